// Package display formats poolcore's exact Q64.96/Q128.128 integers
// into human-readable decimals. It is presentation-only: nothing in
// poolcore imports it, and nothing here feeds back into pool state —
// the core must keep exact integers end to end.
package display

import (
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

var (
	q96  = pow2(96)
	q128 = pow2(128)
)

func pow2(n int32) decimal.Decimal {
	two := decimal.New(2, 0)
	return two.Pow(decimal.New(int64(n), 0))
}

func toDecimal(x *uint256.Int) decimal.Decimal {
	d, _ := decimal.NewFromString(x.Dec())
	return d
}

// Price converts a Q64.96 sqrt price into the human price token1/token0,
// i.e. (sqrtPriceX96 / 2**96)**2, scaled to the given token decimals
// difference (decimals0 - decimals1).
func Price(sqrtPriceX96 *uint256.Int, decimalsDelta int32) decimal.Decimal {
	sqrtP := toDecimal(sqrtPriceX96).Div(q96)
	price := sqrtP.Mul(sqrtP)
	if decimalsDelta != 0 {
		price = price.Mul(pow10(decimalsDelta))
	}
	return price
}

func pow10(exp int32) decimal.Decimal {
	ten := decimal.New(10, 0)
	return ten.Pow(decimal.New(int64(exp), 0))
}

// FeeGrowth converts a Q128.128 fee-growth accumulator into a plain
// decimal, dividing by 2**128.
func FeeGrowth(feeGrowthX128 *uint256.Int) decimal.Decimal {
	return toDecimal(feeGrowthX128).Div(q128)
}

// Amount scales a raw token integer amount down by decimals, e.g. wei
// to ether.
func Amount(raw *uint256.Int, decimals int32) decimal.Decimal {
	return toDecimal(raw).Div(pow10(decimals))
}

// TickPrice reports the human price for a tick's sqrt price. The caller
// supplies that sqrt price (for example from poolcore.GetSqrtPriceAtTick);
// TickPrice does no tick math itself and returns Price of it.
func TickPrice(sqrtPriceAtTick *uint256.Int, decimalsDelta int32) decimal.Decimal {
	return Price(sqrtPriceAtTick, decimalsDelta)
}
