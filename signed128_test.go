package poolcore

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestNewInt128NormalizesZeroSign(t *testing.T) {
	z := NewInt128(uint256.NewInt(0), true)
	require.False(t, z.Neg)
	require.True(t, z.IsZero())
}

func TestAdd128SameSign(t *testing.T) {
	a := NewInt128(uint256.NewInt(5), false)
	b := NewInt128(uint256.NewInt(3), false)
	got := Add128(a, b)
	require.Equal(t, "8", got.Abs.Dec())
	require.False(t, got.Neg)

	negA := NewInt128(uint256.NewInt(5), true)
	negB := NewInt128(uint256.NewInt(3), true)
	got = Add128(negA, negB)
	require.Equal(t, "8", got.Abs.Dec())
	require.True(t, got.Neg)
}

func TestAdd128OppositeSignTakesLargerMagnitudeSign(t *testing.T) {
	a := NewInt128(uint256.NewInt(10), false)
	b := NewInt128(uint256.NewInt(3), true)
	got := Add128(a, b)
	require.Equal(t, "7", got.Abs.Dec())
	require.False(t, got.Neg)

	got = Add128(b, a)
	require.Equal(t, "7", got.Abs.Dec())
	require.False(t, got.Neg)
}

func TestAdd128OppositeSignEqualMagnitudeIsZero(t *testing.T) {
	a := NewInt128(uint256.NewInt(10), false)
	b := NewInt128(uint256.NewInt(10), true)
	got := Add128(a, b)
	require.True(t, got.IsZero())
	require.False(t, got.Neg)
}

func TestSub128(t *testing.T) {
	a := NewInt128(uint256.NewInt(10), false)
	b := NewInt128(uint256.NewInt(4), false)
	got := Sub128(a, b)
	require.Equal(t, "6", got.Abs.Dec())
	require.False(t, got.Neg)
}

func TestAddDeltaPositiveOverflow(t *testing.T) {
	_, err := AddDelta(maxUint256, NewInt128(uint256.NewInt(1), false))
	require.ErrorIs(t, err, ErrOverflow)
}

func TestAddDeltaNegativeUnderflow(t *testing.T) {
	_, err := AddDelta(uint256.NewInt(1), NewInt128(uint256.NewInt(2), true))
	require.ErrorIs(t, err, ErrOverflow)
}

func TestAddDeltaNormalPaths(t *testing.T) {
	sum, err := AddDelta(uint256.NewInt(10), NewInt128(uint256.NewInt(5), false))
	require.NoError(t, err)
	require.Equal(t, "15", sum.Dec())

	diff, err := AddDelta(uint256.NewInt(10), NewInt128(uint256.NewInt(5), true))
	require.NoError(t, err)
	require.Equal(t, "5", diff.Dec())
}

func TestNegated(t *testing.T) {
	a := NewInt128(uint256.NewInt(7), false)
	require.True(t, a.Negated().Neg)
	require.True(t, a.Negated().Negated().Abs.Eq(a.Abs))
	require.False(t, a.Negated().Negated().Neg)
}
