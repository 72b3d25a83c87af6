package poolcore

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T) *Pool {
	t.Helper()
	key, err := NewPoolKey(
		common.HexToAddress("0x1000000000000000000000000000000000000000"),
		common.HexToAddress("0x2000000000000000000000000000000000000000"),
		3000, 60,
	)
	require.NoError(t, err)
	return NewPool(key)
}

func TestPoolInitializeSetsTickAndRejectsDoubleInit(t *testing.T) {
	p := newTestPool(t)
	tick, err := p.Initialize(Q96, 3000)
	require.NoError(t, err)
	require.Equal(t, int32(0), tick)
	require.Equal(t, int32(0), p.Tick())
	require.True(t, p.SqrtPriceX96().Eq(Q96))

	_, err = p.Initialize(Q96, 3000)
	require.ErrorIs(t, err, ErrPoolAlreadyInitialized)
}

func TestPoolModifyLiquidityRequiresInitialization(t *testing.T) {
	p := newTestPool(t)
	_, err := p.ModifyLiquidity(ModifyLiquidityParams{
		TickLower:      -60,
		TickUpper:      60,
		LiquidityDelta: NewInt128(uint256.NewInt(1000), false),
	})
	require.ErrorIs(t, err, ErrPoolNotInitialized)
}

func TestPoolModifyLiquidityRejectsMisorderedTicks(t *testing.T) {
	p := newTestPool(t)
	_, err := p.Initialize(Q96, 3000)
	require.NoError(t, err)

	_, err = p.ModifyLiquidity(ModifyLiquidityParams{
		TickLower:      60,
		TickUpper:      -60,
		LiquidityDelta: NewInt128(uint256.NewInt(1000), false),
	})
	require.ErrorIs(t, err, ErrTicksMisordered)
}

func TestPoolMintStraddlingRangeRequiresBothTokens(t *testing.T) {
	p := newTestPool(t)
	_, err := p.Initialize(Q96, 3000)
	require.NoError(t, err)

	var owner [20]byte
	owner[19] = 1

	result, err := p.ModifyLiquidity(ModifyLiquidityParams{
		Owner:          owner,
		TickLower:      -60,
		TickUpper:      60,
		LiquidityDelta: NewInt128(uint256.NewInt(1_000_000_000), false),
	})
	require.NoError(t, err)
	require.False(t, result.Amount0.Neg)
	require.False(t, result.Amount1.Neg)
	require.True(t, result.Amount0.Abs.Sign() > 0)
	require.True(t, result.Amount1.Abs.Sign() > 0)
	require.Equal(t, "1000000000", p.Liquidity().Dec())
}

func TestPoolMintAboveCurrentTickOnlyRequiresToken0(t *testing.T) {
	p := newTestPool(t)
	_, err := p.Initialize(Q96, 3000)
	require.NoError(t, err)

	var owner [20]byte
	result, err := p.ModifyLiquidity(ModifyLiquidityParams{
		Owner:          owner,
		TickLower:      60,
		TickUpper:      120,
		LiquidityDelta: NewInt128(uint256.NewInt(1_000_000_000), false),
	})
	require.NoError(t, err)
	require.True(t, result.Amount0.Abs.Sign() > 0)
	require.True(t, result.Amount1.IsZero())
	// A range entirely above the current tick doesn't activate liquidity.
	require.Equal(t, "0", p.Liquidity().Dec())
}

func TestPoolBurnReversesActiveLiquidity(t *testing.T) {
	p := newTestPool(t)
	_, err := p.Initialize(Q96, 3000)
	require.NoError(t, err)

	var owner [20]byte
	_, err = p.ModifyLiquidity(ModifyLiquidityParams{
		Owner:          owner,
		TickLower:      -60,
		TickUpper:      60,
		LiquidityDelta: NewInt128(uint256.NewInt(1_000_000_000), false),
	})
	require.NoError(t, err)

	result, err := p.ModifyLiquidity(ModifyLiquidityParams{
		Owner:          owner,
		TickLower:      -60,
		TickUpper:      60,
		LiquidityDelta: NewInt128(uint256.NewInt(1_000_000_000), true),
	})
	require.NoError(t, err)
	require.True(t, result.Amount0.Neg)
	require.True(t, result.Amount1.Neg)
	require.Equal(t, "0", p.Liquidity().Dec())
}

func TestPoolSwapRejectsPriceLimitOnWrongSide(t *testing.T) {
	p := newTestPool(t)
	_, err := p.Initialize(Q96, 3000)
	require.NoError(t, err)

	_, err = p.Swap(SwapParams{
		ZeroForOne:        true,
		AmountSpecified:   NewInt128(uint256.NewInt(100), false),
		SqrtPriceLimitX96: new(uint256.Int).Add(Q96, uint256.NewInt(1)),
	})
	require.ErrorIs(t, err, ErrPriceLimitAlreadyExceeded)
}

func TestPoolSwapZeroForOneExactInMovesPriceDown(t *testing.T) {
	p := newTestPool(t)
	_, err := p.Initialize(Q96, 3000)
	require.NoError(t, err)

	var owner [20]byte
	_, err = p.ModifyLiquidity(ModifyLiquidityParams{
		Owner:          owner,
		TickLower:      -60 * 100,
		TickUpper:      60 * 100,
		LiquidityDelta: NewInt128(uint256.NewInt(1_000_000_000_000), false),
	})
	require.NoError(t, err)

	result, err := p.Swap(SwapParams{
		ZeroForOne:        true,
		AmountSpecified:   NewInt128(uint256.NewInt(1_000_000), false),
		SqrtPriceLimitX96: new(uint256.Int).Add(MinSqrtPrice, uint256.NewInt(1)),
	})
	require.NoError(t, err)
	require.False(t, result.Amount0.Neg, "the swapper pays token0 in")
	require.True(t, result.Amount1.Neg, "the pool pays token1 out")
	require.True(t, p.SqrtPriceX96().Cmp(Q96) < 0)
}

func TestPoolSwapOneForZeroExactInMovesPriceUp(t *testing.T) {
	p := newTestPool(t)
	_, err := p.Initialize(Q96, 3000)
	require.NoError(t, err)

	var owner [20]byte
	_, err = p.ModifyLiquidity(ModifyLiquidityParams{
		Owner:          owner,
		TickLower:      -60 * 100,
		TickUpper:      60 * 100,
		LiquidityDelta: NewInt128(uint256.NewInt(1_000_000_000_000), false),
	})
	require.NoError(t, err)

	result, err := p.Swap(SwapParams{
		ZeroForOne:        false,
		AmountSpecified:   NewInt128(uint256.NewInt(1_000_000), false),
		SqrtPriceLimitX96: new(uint256.Int).Sub(MaxSqrtPrice, uint256.NewInt(1)),
	})
	require.NoError(t, err)
	require.True(t, result.Amount0.Neg, "the pool pays token0 out")
	require.False(t, result.Amount1.Neg, "the swapper pays token1 in")
	require.True(t, p.SqrtPriceX96().Cmp(Q96) > 0)
}

func TestPoolSwapAccruesFeesToBurners(t *testing.T) {
	p := newTestPool(t)
	_, err := p.Initialize(Q96, 3000)
	require.NoError(t, err)

	var owner [20]byte
	_, err = p.ModifyLiquidity(ModifyLiquidityParams{
		Owner:          owner,
		TickLower:      -60 * 100,
		TickUpper:      60 * 100,
		LiquidityDelta: NewInt128(uint256.NewInt(1_000_000_000_000), false),
	})
	require.NoError(t, err)

	_, err = p.Swap(SwapParams{
		ZeroForOne:        true,
		AmountSpecified:   NewInt128(uint256.NewInt(10_000_000), false),
		SqrtPriceLimitX96: new(uint256.Int).Add(MinSqrtPrice, uint256.NewInt(1)),
	})
	require.NoError(t, err)

	result, err := p.ModifyLiquidity(ModifyLiquidityParams{
		Owner:          owner,
		TickLower:      -60 * 100,
		TickUpper:      60 * 100,
		LiquidityDelta: ZeroInt128(),
	})
	require.NoError(t, err)
	require.True(t, result.Owed0.Sign() > 0, "the zeroForOne swap should have accrued token0 fees to the LP")
}

func TestPoolCloneIsIndependent(t *testing.T) {
	p := newTestPool(t)
	_, err := p.Initialize(Q96, 3000)
	require.NoError(t, err)

	clone := p.Clone()
	var owner [20]byte
	_, err = p.ModifyLiquidity(ModifyLiquidityParams{
		Owner:          owner,
		TickLower:      -60,
		TickUpper:      60,
		LiquidityDelta: NewInt128(uint256.NewInt(1_000_000), false),
	})
	require.NoError(t, err)

	require.Equal(t, "0", clone.Liquidity().Dec())
	require.Equal(t, "1000000", p.Liquidity().Dec())
}
