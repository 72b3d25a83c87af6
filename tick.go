package poolcore

import "github.com/holiman/uint256"

// TickInfo is the per-tick bookkeeping entry: gross
// liquidity referencing the tick as a boundary, the signed net
// liquidity contributed when the tick is crossed left-to-right, and
// the fee-growth-outside snapshots used by GetFeeGrowthInside.
type TickInfo struct {
	LiquidityGross        *uint256.Int
	LiquidityNet          Int128
	FeeGrowthOutside0X128 *uint256.Int
	FeeGrowthOutside1X128 *uint256.Int
}

func newTickInfo() *TickInfo {
	return &TickInfo{
		LiquidityGross:        uint256.NewInt(0),
		LiquidityNet:          ZeroInt128(),
		FeeGrowthOutside0X128: uint256.NewInt(0),
		FeeGrowthOutside1X128: uint256.NewInt(0),
	}
}

func (t *TickInfo) clone() *TickInfo {
	return &TickInfo{
		LiquidityGross:        new(uint256.Int).Set(t.LiquidityGross),
		LiquidityNet:          NewInt128(t.LiquidityNet.Abs, t.LiquidityNet.Neg),
		FeeGrowthOutside0X128: new(uint256.Int).Set(t.FeeGrowthOutside0X128),
		FeeGrowthOutside1X128: new(uint256.Int).Set(t.FeeGrowthOutside1X128),
	}
}

// TickTable is the sparse map from tick to TickInfo.
type TickTable struct {
	ticks map[int32]*TickInfo
}

// NewTickTable returns an empty table.
func NewTickTable() *TickTable {
	return &TickTable{ticks: make(map[int32]*TickInfo)}
}

// Clone deep-copies the table.
func (tt *TickTable) Clone() *TickTable {
	out := NewTickTable()
	for k, v := range tt.ticks {
		out.ticks[k] = v.clone()
	}
	return out
}

// Get returns the tick entry, or nil if it does not exist.
func (tt *TickTable) Get(tick int32) *TickInfo {
	return tt.ticks[tick]
}

func (tt *TickTable) getOrCreate(tick int32) *TickInfo {
	info, ok := tt.ticks[tick]
	if !ok {
		info = newTickInfo()
		tt.ticks[tick] = info
	}
	return info
}

// Update applies a signed liquidity delta to the tick referenced as a
// lower (isUpper=false) or upper (isUpper=true) boundary, initializing
// fee-growth-outside on first touch. It returns
// whether the tick flipped its initialized/uninitialized state and the
// gross liquidity after the update.
func (tt *TickTable) Update(
	tick int32,
	liquidityDelta Int128,
	tickCurrent int32,
	feeGrowthGlobal0X128, feeGrowthGlobal1X128 *uint256.Int,
	isUpper bool,
	maxLiquidityPerTick *uint256.Int,
) (flipped bool, liquidityGrossAfter *uint256.Int, err error) {
	info := tt.getOrCreate(tick)
	grossBefore := info.LiquidityGross

	grossAfter, err := AddDelta(grossBefore, liquidityDelta)
	if err != nil {
		return false, nil, ErrTickLiquidityOverflow
	}
	if grossAfter.Cmp(maxLiquidityPerTick) > 0 {
		return false, nil, ErrTickLiquidityOverflow
	}

	if grossBefore.IsZero() && tick <= tickCurrent {
		info.FeeGrowthOutside0X128 = new(uint256.Int).Set(feeGrowthGlobal0X128)
		info.FeeGrowthOutside1X128 = new(uint256.Int).Set(feeGrowthGlobal1X128)
	}

	info.LiquidityGross = grossAfter

	netDelta := liquidityDelta
	if isUpper {
		netDelta = liquidityDelta.Negated()
	}
	info.LiquidityNet = Add128(info.LiquidityNet, netDelta)

	flipped = grossBefore.IsZero() != grossAfter.IsZero()
	return flipped, grossAfter, nil
}

// Clear removes a tick entry entirely, used once its liquidityGross
// returns to zero.
func (tt *TickTable) Clear(tick int32) {
	delete(tt.ticks, tick)
}

// Cross flips a tick's fee-growth-outside accumulators (outside =
// global - outside, modular) and returns its signed liquidityNet.
func (tt *TickTable) Cross(tick int32, feeGrowthGlobal0X128, feeGrowthGlobal1X128 *uint256.Int) Int128 {
	info := tt.getOrCreate(tick)
	info.FeeGrowthOutside0X128 = new(uint256.Int).Sub(feeGrowthGlobal0X128, info.FeeGrowthOutside0X128)
	info.FeeGrowthOutside1X128 = new(uint256.Int).Sub(feeGrowthGlobal1X128, info.FeeGrowthOutside1X128)
	return info.LiquidityNet
}

// GetFeeGrowthInside computes the fee growth accrued strictly inside
// [tickLower, tickUpper] given the pool's current tick and global
// accumulators, via a three-case rule depending on where tickCurrent
// falls relative to the range. All subtraction is the uint256
// library's native modular 2**256 subtraction.
func (tt *TickTable) GetFeeGrowthInside(
	tickLower, tickUpper, tickCurrent int32,
	feeGrowthGlobal0X128, feeGrowthGlobal1X128 *uint256.Int,
) (feeGrowthInside0X128, feeGrowthInside1X128 *uint256.Int) {
	lower := tt.getOrCreate(tickLower)
	upper := tt.getOrCreate(tickUpper)

	var below0, below1, above0, above1 *uint256.Int
	if tickCurrent >= tickLower {
		below0, below1 = lower.FeeGrowthOutside0X128, lower.FeeGrowthOutside1X128
	} else {
		below0 = new(uint256.Int).Sub(feeGrowthGlobal0X128, lower.FeeGrowthOutside0X128)
		below1 = new(uint256.Int).Sub(feeGrowthGlobal1X128, lower.FeeGrowthOutside1X128)
	}

	if tickCurrent < tickUpper {
		above0, above1 = upper.FeeGrowthOutside0X128, upper.FeeGrowthOutside1X128
	} else {
		above0 = new(uint256.Int).Sub(feeGrowthGlobal0X128, upper.FeeGrowthOutside0X128)
		above1 = new(uint256.Int).Sub(feeGrowthGlobal1X128, upper.FeeGrowthOutside1X128)
	}

	feeGrowthInside0X128 = new(uint256.Int).Sub(new(uint256.Int).Sub(feeGrowthGlobal0X128, below0), above0)
	feeGrowthInside1X128 = new(uint256.Int).Sub(new(uint256.Int).Sub(feeGrowthGlobal1X128, below1), above1)
	return
}

// MaxLiquidityPerTick returns 2**128 / numTicks(spacing), the cap each
// tick's liquidityGross may not exceed.
func MaxLiquidityPerTick(tickSpacing int32) *uint256.Int {
	numTicks := (uint64(MaxTick)/uint64(tickSpacing))*2 + 1
	maxU128 := new(uint256.Int).Lsh(uint256.NewInt(1), 128)
	return new(uint256.Int).Div(maxU128, uint256.NewInt(numTicks))
}
