package poolcore

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestGetSqrtPriceAtTickZero(t *testing.T) {
	got, err := GetSqrtPriceAtTick(0)
	require.NoError(t, err)
	require.True(t, got.Eq(Q96))
}

func TestGetSqrtPriceAtTickOutOfRange(t *testing.T) {
	_, err := GetSqrtPriceAtTick(MaxTick + 1)
	require.ErrorIs(t, err, ErrInvalidTick)

	_, err = GetSqrtPriceAtTick(MinTick - 1)
	require.ErrorIs(t, err, ErrInvalidTick)
}

func TestGetSqrtPriceAtTickMonotonic(t *testing.T) {
	ticks := []int32{MinTick, -500000, -1, 0, 1, 500000, MaxTick}
	var prev = MinSqrtPrice
	for i, tick := range ticks {
		price, err := GetSqrtPriceAtTick(tick)
		require.NoError(t, err)
		if i > 0 {
			require.True(t, price.Cmp(prev) >= 0, "tick %d should not decrease the sqrt price", tick)
		}
		prev = price
	}
}

func TestGetTickAtSqrtPriceRoundTrip(t *testing.T) {
	for _, tick := range []int32{MinTick, -443636, -1, 0, 1, 443636, MaxTick - 1} {
		price, err := GetSqrtPriceAtTick(tick)
		require.NoError(t, err)
		got, err := GetTickAtSqrtPrice(price)
		require.NoError(t, err)
		require.Equal(t, tick, got)
	}
}

func TestGetTickAtSqrtPriceOutOfRange(t *testing.T) {
	_, err := GetTickAtSqrtPrice(MaxSqrtPrice)
	require.ErrorIs(t, err, ErrInvalidSqrtPrice)

	lessThanMin, err := MulDiv(MinSqrtPrice, uint256.NewInt(1), uint256.NewInt(2))
	require.NoError(t, err)
	_, err = GetTickAtSqrtPrice(lessThanMin)
	require.ErrorIs(t, err, ErrInvalidSqrtPrice)
}

func TestMostSignificantBit(t *testing.T) {
	require.Equal(t, 0, mostSignificantBit(uint256.NewInt(1)))
	require.Equal(t, 3, mostSignificantBit(uint256.NewInt(8)))
	require.Equal(t, 255, mostSignificantBit(maxUint256))
}
