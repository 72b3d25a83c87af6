package poolcore

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestTickTableUpdateFlipsOnFirstTouch(t *testing.T) {
	tt := NewTickTable()
	delta := NewInt128(uint256.NewInt(100), false)

	flipped, gross, err := tt.Update(60, delta, 0, uint256.NewInt(0), uint256.NewInt(0), false, MaxLiquidityPerTick(60))
	require.NoError(t, err)
	require.True(t, flipped)
	require.Equal(t, "100", gross.Dec())

	flipped, gross, err = tt.Update(60, delta, 0, uint256.NewInt(0), uint256.NewInt(0), false, MaxLiquidityPerTick(60))
	require.NoError(t, err)
	require.False(t, flipped)
	require.Equal(t, "200", gross.Dec())
}

func TestTickTableUpdateUpperNegatesNet(t *testing.T) {
	tt := NewTickTable()
	delta := NewInt128(uint256.NewInt(50), false)

	_, _, err := tt.Update(120, delta, 0, uint256.NewInt(0), uint256.NewInt(0), true, MaxLiquidityPerTick(60))
	require.NoError(t, err)

	info := tt.Get(120)
	require.True(t, info.LiquidityNet.Neg)
	require.Equal(t, "50", info.LiquidityNet.Abs.Dec())
}

func TestTickTableUpdateRejectsOverflow(t *testing.T) {
	tt := NewTickTable()
	limit := uint256.NewInt(100)
	delta := NewInt128(uint256.NewInt(101), false)

	_, _, err := tt.Update(60, delta, 0, uint256.NewInt(0), uint256.NewInt(0), false, limit)
	require.ErrorIs(t, err, ErrTickLiquidityOverflow)
}

func TestTickTableClearRemovesEntry(t *testing.T) {
	tt := NewTickTable()
	tt.getOrCreate(60)
	require.NotNil(t, tt.Get(60))
	tt.Clear(60)
	require.Nil(t, tt.Get(60))
}

func TestTickTableCrossFlipsFeeGrowthOutside(t *testing.T) {
	tt := NewTickTable()
	info := tt.getOrCreate(60)
	info.FeeGrowthOutside0X128 = uint256.NewInt(30)
	info.FeeGrowthOutside1X128 = uint256.NewInt(10)
	info.LiquidityNet = NewInt128(uint256.NewInt(5), false)

	net := tt.Cross(60, uint256.NewInt(100), uint256.NewInt(100))
	require.Equal(t, "5", net.Abs.Dec())

	after := tt.Get(60)
	require.Equal(t, "70", after.FeeGrowthOutside0X128.Dec())
	require.Equal(t, "90", after.FeeGrowthOutside1X128.Dec())
}

func TestGetFeeGrowthInsideAllCases(t *testing.T) {
	tt := NewTickTable()
	global0, global1 := uint256.NewInt(1000), uint256.NewInt(2000)

	// Current tick inside the range: both boundaries contribute their
	// outside snapshots directly.
	inside0, inside1 := tt.GetFeeGrowthInside(-60, 60, 0, global0, global1)
	require.Equal(t, "1000", inside0.Dec())
	require.Equal(t, "2000", inside1.Dec())

	// Current tick below the range: lower boundary's "below" leg flips
	// to global-minus-outside.
	tt2 := NewTickTable()
	lower := tt2.getOrCreate(-60)
	lower.FeeGrowthOutside0X128 = uint256.NewInt(100)
	lower.FeeGrowthOutside1X128 = uint256.NewInt(200)
	inside0, inside1 = tt2.GetFeeGrowthInside(-60, 60, -120, global0, global1)
	require.Equal(t, "100", inside0.Dec())
	require.Equal(t, "200", inside1.Dec())
}

func TestMaxLiquidityPerTick(t *testing.T) {
	wideCap := MaxLiquidityPerTick(60)
	require.True(t, wideCap.Sign() > 0)

	finerCap := MaxLiquidityPerTick(1)
	require.True(t, finerCap.Cmp(wideCap) < 0, "a finer tick spacing packs more ticks, so each gets a smaller cap")
}
