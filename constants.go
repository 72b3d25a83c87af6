package poolcore

import "github.com/holiman/uint256"

// Tick bounds and fixed point widths, bit-exact with the Uniswap v3/v4
// family.
const (
	MinTick = -887272
	MaxTick = 887272

	MinTickSpacing = 1
	MaxTickSpacing = 32767

	// MaxSwapFee is expressed in hundredths of a basis point: 1_000_000 == 100%.
	MaxSwapFee = 1_000_000
)

var (
	// Q96 = 2**96, the Q64.96 fixed point unit for sqrt prices.
	Q96 = uint256.NewInt(1).Lsh(uint256.NewInt(1), 96)
	// Q128 = 2**128, the Q128.128 fixed point unit for fee growth accumulators.
	Q128 = new(uint256.Int).Lsh(uint256.NewInt(1), 128)

	// MinSqrtPrice / MaxSqrtPrice bound the half-open range a pool's
	// sqrt price may occupy once initialized.
	MinSqrtPrice = uint256.NewInt(4295128739)
	MaxSqrtPrice = mustFromDecimal("1461446703485210103287273052203988822378723970342")

	// SqrtPriceAtTick0 = 2**96, the sqrt price of the tick-0 boundary.
	SqrtPriceAtTick0 = new(uint256.Int).Set(Q96)

	// maxUint256 is 2**256 - 1: the overflow threshold in
	// MulDivRoundingUp and the numerator that GetSqrtPriceAtTick divides
	// to invert its ratio for positive ticks.
	maxUint256 = new(uint256.Int).Not(uint256.NewInt(0))
)

func mustFromDecimal(s string) *uint256.Int {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		panic(err)
	}
	return v
}
