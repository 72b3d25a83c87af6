package poolcore

import "github.com/holiman/uint256"

// maxUint160 bounds the amount1-side price math.
var maxUint160 = mustFromDecimal("1461501637330902918203684832716283019655932542975")

func orderSqrtPrices(a, b *uint256.Int) (*uint256.Int, *uint256.Int) {
	if a.Cmp(b) > 0 {
		return b, a
	}
	return a, b
}

// GetAmount0Delta returns the token0 amount needed to move liquidity L
// between two sqrt prices, rounded up or down.
func GetAmount0Delta(sqrtPriceAX96, sqrtPriceBX96, liquidity *uint256.Int, roundUp bool) (*uint256.Int, error) {
	lo, hi := orderSqrtPrices(sqrtPriceAX96, sqrtPriceBX96)
	if lo.IsZero() {
		return nil, ErrInvalidPrice
	}

	numerator1 := new(uint256.Int).Lsh(liquidity, 96)
	numerator2 := new(uint256.Int).Sub(hi, lo)

	if roundUp {
		num, err := MulDivRoundingUp(numerator1, numerator2, hi)
		if err != nil {
			return nil, err
		}
		return divRoundingUp(num, lo), nil
	}
	num, err := MulDiv(numerator1, numerator2, hi)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).Div(num, lo), nil
}

// GetAmount1Delta returns the token1 amount needed to move liquidity L
// between two sqrt prices, rounded up or down.
func GetAmount1Delta(sqrtPriceAX96, sqrtPriceBX96, liquidity *uint256.Int, roundUp bool) (*uint256.Int, error) {
	lo, hi := orderSqrtPrices(sqrtPriceAX96, sqrtPriceBX96)
	diff := new(uint256.Int).Sub(hi, lo)
	if roundUp {
		return MulDivRoundingUp(liquidity, diff, Q96)
	}
	return MulDiv(liquidity, diff, Q96)
}

func divRoundingUp(a, b *uint256.Int) *uint256.Int {
	q := new(uint256.Int).Div(a, b)
	rem := new(uint256.Int).Mod(a, b)
	if !rem.IsZero() {
		q = new(uint256.Int).AddUint64(q, 1)
	}
	return q
}

// GetNextSqrtPriceFromAmount0RoundingUp computes the sqrt price after
// adding (add=true) or removing (add=false) amount of token0 at
// constant liquidity, always rounded up to keep the price conservative
// so the pool is never under-charged.
func GetNextSqrtPriceFromAmount0RoundingUp(sqrtPX96, liquidity, amount *uint256.Int, add bool) (*uint256.Int, error) {
	if amount.IsZero() {
		return new(uint256.Int).Set(sqrtPX96), nil
	}
	numerator1 := new(uint256.Int).Lsh(liquidity, 96)

	if add {
		product, overflow := new(uint256.Int).MulOverflow(amount, sqrtPX96)
		if !overflow {
			denominator, denomOverflow := new(uint256.Int).AddOverflow(numerator1, product)
			if !denomOverflow && denominator.Cmp(numerator1) >= 0 {
				return MulDivRoundingUp(numerator1, sqrtPX96, denominator)
			}
		}
		quotient := new(uint256.Int).Div(numerator1, sqrtPX96)
		quotient = new(uint256.Int).Add(quotient, amount)
		return divRoundingUp(numerator1, quotient), nil
	}

	product, overflow := new(uint256.Int).MulOverflow(amount, sqrtPX96)
	if overflow {
		return nil, ErrNotEnoughLiquidity
	}
	if numerator1.Cmp(product) <= 0 {
		return nil, ErrNotEnoughLiquidity
	}
	denominator := new(uint256.Int).Sub(numerator1, product)
	return MulDivRoundingUp(numerator1, sqrtPX96, denominator)
}

// GetNextSqrtPriceFromAmount1RoundingDown computes the sqrt price after
// adding or removing amount of token1 at constant liquidity. The
// subtraction case rounds the quotient up so the subtracted value stays
// conservative.
func GetNextSqrtPriceFromAmount1RoundingDown(sqrtPX96, liquidity, amount *uint256.Int, add bool) (*uint256.Int, error) {
	if amount.Cmp(maxUint160) > 0 {
		return nil, ErrAmountOverflow
	}
	if add {
		var quotient *uint256.Int
		var err error
		if amount.Cmp(maxUint160) <= 0 {
			quotient = new(uint256.Int).Div(new(uint256.Int).Lsh(amount, 96), liquidity)
		} else {
			quotient, err = MulDiv(amount, Q96, liquidity)
			if err != nil {
				return nil, err
			}
		}
		return new(uint256.Int).Add(sqrtPX96, quotient), nil
	}

	quotient, err := MulDivRoundingUp(amount, Q96, liquidity)
	if err != nil {
		return nil, err
	}
	if sqrtPX96.Cmp(quotient) <= 0 {
		return nil, ErrNotEnoughLiquidity
	}
	return new(uint256.Int).Sub(sqrtPX96, quotient), nil
}

// GetNextSqrtPriceFromInput dispatches to the amount0/amount1 formula
// depending on swap direction for an exact-input step.
func GetNextSqrtPriceFromInput(sqrtPX96, liquidity, amountIn *uint256.Int, zeroForOne bool) (*uint256.Int, error) {
	if sqrtPX96.IsZero() || liquidity.IsZero() {
		return nil, ErrInvalidPriceOrLiquidity
	}
	if zeroForOne {
		return GetNextSqrtPriceFromAmount0RoundingUp(sqrtPX96, liquidity, amountIn, true)
	}
	return GetNextSqrtPriceFromAmount1RoundingDown(sqrtPX96, liquidity, amountIn, true)
}

// GetNextSqrtPriceFromOutput dispatches to the amount0/amount1 formula
// for an exact-output step, with the direction inverted relative to
// GetNextSqrtPriceFromInput.
func GetNextSqrtPriceFromOutput(sqrtPX96, liquidity, amountOut *uint256.Int, zeroForOne bool) (*uint256.Int, error) {
	if sqrtPX96.IsZero() || liquidity.IsZero() {
		return nil, ErrInvalidPriceOrLiquidity
	}
	if zeroForOne {
		return GetNextSqrtPriceFromAmount1RoundingDown(sqrtPX96, liquidity, amountOut, false)
	}
	return GetNextSqrtPriceFromAmount0RoundingUp(sqrtPX96, liquidity, amountOut, false)
}
