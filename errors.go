package poolcore

import "errors"

// Error taxonomy. Every condition is fatal to the operation in progress.
// Pool's per-operation lock (pool.go) keeps operations from interleaving
// but does not roll back: an error raised after an operation has begun
// writing (for example on the upper tick after the lower tick was
// updated, or after a swap has crossed a tick) leaves those earlier
// writes in place.
var (
	ErrInvalidTick               = errors.New("poolcore: tick outside the representable range")
	ErrInvalidSqrtPrice          = errors.New("poolcore: sqrt price outside [MinSqrtPrice, MaxSqrtPrice)")
	ErrTicksMisordered           = errors.New("poolcore: tick lower must be less than tick upper")
	ErrTickLowerOutOfBounds      = errors.New("poolcore: tick lower out of bounds")
	ErrTickUpperOutOfBounds      = errors.New("poolcore: tick upper out of bounds")
	ErrTickLiquidityOverflow     = errors.New("poolcore: liquidity gross would exceed max liquidity per tick")
	ErrTickMisaligned            = errors.New("poolcore: tick is not a multiple of tick spacing")
	ErrPoolAlreadyInitialized    = errors.New("poolcore: pool already initialized")
	ErrPoolNotInitialized        = errors.New("poolcore: pool not initialized")
	ErrPriceLimitAlreadyExceeded = errors.New("poolcore: price limit already exceeded by current price")
	ErrPriceLimitOutOfBounds     = errors.New("poolcore: price limit out of bounds")
	ErrInvalidSwapFee            = errors.New("poolcore: swap fee above MaxSwapFee (or equal to it for exact output)")
	ErrInvalidForExactOutput     = errors.New("poolcore: 100% fee is incompatible with a nonzero exact-output swap")
	ErrNotEnoughLiquidity        = errors.New("poolcore: not enough liquidity for the requested price movement")
	ErrInvalidPrice              = errors.New("poolcore: zero price supplied to price math")
	ErrInvalidPriceOrLiquidity   = errors.New("poolcore: zero price or liquidity supplied to price math")
	ErrAmountOverflow            = errors.New("poolcore: amount exceeds 2**160 - 1")
	ErrOverflow                  = errors.New("poolcore: mulDiv result overflows 256 bits")
	ErrDenominatorZero           = errors.New("poolcore: mulDiv denominator is zero")
	ErrCannotUpdateEmptyPosition = errors.New("poolcore: cannot apply a zero liquidity delta to an empty position")
	ErrInvalidTokenOrder         = errors.New("poolcore: token0 must be lexicographically less than token1")
	ErrTickSpacingOutOfBounds    = errors.New("poolcore: tick spacing out of [MinTickSpacing, MaxTickSpacing]")
)
