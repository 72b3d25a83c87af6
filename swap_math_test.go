package poolcore

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestComputeSwapStepExactInPartialFill(t *testing.T) {
	current, err := GetSqrtPriceAtTick(0)
	require.NoError(t, err)
	target, err := GetSqrtPriceAtTick(-1000)
	require.NoError(t, err)
	liquidity := uint256.NewInt(1_000_000_000_000)

	out, err := ComputeSwapStep(current, target, liquidity, uint256.NewInt(1000), 3000, true)
	require.NoError(t, err)
	require.True(t, out.SqrtPriceNextX96.Cmp(target) > 0, "too little input to reach the target price")
	require.True(t, out.SqrtPriceNextX96.Cmp(current) < 0)
	require.True(t, out.AmountIn.Sign() > 0)
	require.True(t, out.FeeAmount.Sign() > 0)
}

func TestComputeSwapStepExactInFillsToTarget(t *testing.T) {
	current, err := GetSqrtPriceAtTick(0)
	require.NoError(t, err)
	target, err := GetSqrtPriceAtTick(-10)
	require.NoError(t, err)
	liquidity := uint256.NewInt(1_000_000_000_000)

	huge := new(uint256.Int).Lsh(uint256.NewInt(1), 100)
	out, err := ComputeSwapStep(current, target, liquidity, huge, 3000, true)
	require.NoError(t, err)
	require.True(t, out.SqrtPriceNextX96.Eq(target))
	require.True(t, out.AmountOut.Sign() > 0)
}

func TestComputeSwapStepExactInFullFeeChargesEntireAmount(t *testing.T) {
	current, err := GetSqrtPriceAtTick(0)
	require.NoError(t, err)
	target, err := GetSqrtPriceAtTick(-10)
	require.NoError(t, err)
	liquidity := uint256.NewInt(1_000_000_000_000)

	huge := new(uint256.Int).Lsh(uint256.NewInt(1), 100)
	out, err := ComputeSwapStep(current, target, liquidity, huge, MaxSwapFee, true)
	require.NoError(t, err)
	require.True(t, out.FeeAmount.Eq(huge))
}

func TestComputeSwapStepExactOutPartialFill(t *testing.T) {
	current, err := GetSqrtPriceAtTick(0)
	require.NoError(t, err)
	target, err := GetSqrtPriceAtTick(-1000)
	require.NoError(t, err)
	liquidity := uint256.NewInt(1_000_000_000_000)

	out, err := ComputeSwapStep(current, target, liquidity, uint256.NewInt(1000), 3000, false)
	require.NoError(t, err)
	require.True(t, out.SqrtPriceNextX96.Cmp(target) > 0)
	require.True(t, out.AmountOut.Eq(uint256.NewInt(1000)))
}

func TestComputeSwapStepExactOutFillsToTarget(t *testing.T) {
	current, err := GetSqrtPriceAtTick(0)
	require.NoError(t, err)
	target, err := GetSqrtPriceAtTick(-10)
	require.NoError(t, err)
	liquidity := uint256.NewInt(1_000_000_000_000)

	huge := new(uint256.Int).Lsh(uint256.NewInt(1), 100)
	out, err := ComputeSwapStep(current, target, liquidity, huge, 3000, false)
	require.NoError(t, err)
	require.True(t, out.SqrtPriceNextX96.Eq(target))
}

func TestComputeSwapStepExactOutRejectsFullFee(t *testing.T) {
	current, err := GetSqrtPriceAtTick(0)
	require.NoError(t, err)
	target, err := GetSqrtPriceAtTick(-10)
	require.NoError(t, err)

	_, err = ComputeSwapStep(current, target, uint256.NewInt(1_000_000), uint256.NewInt(10), MaxSwapFee, false)
	require.ErrorIs(t, err, ErrInvalidSwapFee)
}
