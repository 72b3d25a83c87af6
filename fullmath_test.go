package poolcore

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestMulDivBasic(t *testing.T) {
	a := uint256.NewInt(1000)
	b := uint256.NewInt(3000)
	d := uint256.NewInt(7)

	got, err := MulDiv(a, b, d)
	require.NoError(t, err)
	require.Equal(t, "428571", got.Dec())
}

func TestMulDivZeroDenominator(t *testing.T) {
	_, err := MulDiv(uint256.NewInt(1), uint256.NewInt(1), uint256.NewInt(0))
	require.ErrorIs(t, err, ErrDenominatorZero)
}

func TestMulDivOverflow(t *testing.T) {
	_, err := MulDiv(maxUint256, maxUint256, uint256.NewInt(1))
	require.ErrorIs(t, err, ErrOverflow)
}

func TestMulDivRoundingUpExactAndInexact(t *testing.T) {
	exact, err := MulDivRoundingUp(uint256.NewInt(10), uint256.NewInt(2), uint256.NewInt(5))
	require.NoError(t, err)
	require.Equal(t, "4", exact.Dec())

	inexact, err := MulDivRoundingUp(uint256.NewInt(10), uint256.NewInt(1), uint256.NewInt(3))
	require.NoError(t, err)
	require.Equal(t, "4", inexact.Dec())
}

func TestMulMod(t *testing.T) {
	got := MulMod(uint256.NewInt(7), uint256.NewInt(5), uint256.NewInt(3))
	require.Equal(t, "2", got.Dec())
}
