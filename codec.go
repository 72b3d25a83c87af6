package poolcore

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// The types in this file give Pool, TickTable, TickBitmap and
// PositionLedger a JSON encoding so the snapshot package can persist
// and reload engine state without reaching into unexported fields.
// Integers are encoded as decimal strings rather than floats to stay
// exact.

type tickInfoJSON struct {
	LiquidityGross        string `json:"liquidityGross"`
	LiquidityNetAbs       string `json:"liquidityNetAbs"`
	LiquidityNetNeg       bool   `json:"liquidityNetNeg"`
	FeeGrowthOutside0X128 string `json:"feeGrowthOutside0X128"`
	FeeGrowthOutside1X128 string `json:"feeGrowthOutside1X128"`
}

// MarshalJSON encodes the table as a map from decimal tick string to
// its TickInfo.
func (tt *TickTable) MarshalJSON() ([]byte, error) {
	out := make(map[string]tickInfoJSON, len(tt.ticks))
	for tick, info := range tt.ticks {
		out[fmt.Sprintf("%d", tick)] = tickInfoJSON{
			LiquidityGross:        info.LiquidityGross.Dec(),
			LiquidityNetAbs:       info.LiquidityNet.Abs.Dec(),
			LiquidityNetNeg:       info.LiquidityNet.Neg,
			FeeGrowthOutside0X128: info.FeeGrowthOutside0X128.Dec(),
			FeeGrowthOutside1X128: info.FeeGrowthOutside1X128.Dec(),
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON reconstructs the table from MarshalJSON's output.
func (tt *TickTable) UnmarshalJSON(data []byte) error {
	var in map[string]tickInfoJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	ticks := make(map[int32]*TickInfo, len(in))
	for tickStr, v := range in {
		var tick int32
		if _, err := fmt.Sscanf(tickStr, "%d", &tick); err != nil {
			return fmt.Errorf("decoding tick key %q: %w", tickStr, err)
		}
		gross, err := uint256.FromDecimal(v.LiquidityGross)
		if err != nil {
			return err
		}
		netAbs, err := uint256.FromDecimal(v.LiquidityNetAbs)
		if err != nil {
			return err
		}
		outside0, err := uint256.FromDecimal(v.FeeGrowthOutside0X128)
		if err != nil {
			return err
		}
		outside1, err := uint256.FromDecimal(v.FeeGrowthOutside1X128)
		if err != nil {
			return err
		}
		ticks[tick] = &TickInfo{
			LiquidityGross:        gross,
			LiquidityNet:          NewInt128(netAbs, v.LiquidityNetNeg),
			FeeGrowthOutside0X128: outside0,
			FeeGrowthOutside1X128: outside1,
		}
	}
	tt.ticks = ticks
	return nil
}

// MarshalJSON encodes the bitmap as a map from decimal word index to
// the word's hex value.
func (b *TickBitmap) MarshalJSON() ([]byte, error) {
	out := make(map[string]string, len(b.words))
	for wordPos, word := range b.words {
		out[fmt.Sprintf("%d", wordPos)] = word.Hex()
	}
	return json.Marshal(out)
}

// UnmarshalJSON reconstructs the bitmap from MarshalJSON's output.
func (b *TickBitmap) UnmarshalJSON(data []byte) error {
	var in map[string]string
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	words := make(map[int16]*uint256.Int, len(in))
	for posStr, hexVal := range in {
		var pos int16
		if _, err := fmt.Sscanf(posStr, "%d", &pos); err != nil {
			return fmt.Errorf("decoding word position %q: %w", posStr, err)
		}
		word, err := uint256.FromHex(hexVal)
		if err != nil {
			return err
		}
		words[pos] = word
	}
	b.words = words
	return nil
}

type positionJSON struct {
	Liquidity                string `json:"liquidity"`
	FeeGrowthInside0LastX128 string `json:"feeGrowthInside0LastX128"`
	FeeGrowthInside1LastX128 string `json:"feeGrowthInside1LastX128"`
}

// MarshalJSON encodes the ledger as a map from hex position key to
// its Position.
func (pl *PositionLedger) MarshalJSON() ([]byte, error) {
	out := make(map[string]positionJSON, len(pl.positions))
	for key, pos := range pl.positions {
		out[hex.EncodeToString(key[:])] = positionJSON{
			Liquidity:                pos.Liquidity.Dec(),
			FeeGrowthInside0LastX128: pos.FeeGrowthInside0LastX128.Dec(),
			FeeGrowthInside1LastX128: pos.FeeGrowthInside1LastX128.Dec(),
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON reconstructs the ledger from MarshalJSON's output.
func (pl *PositionLedger) UnmarshalJSON(data []byte) error {
	var in map[string]positionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	positions := make(map[[32]byte]*Position, len(in))
	for keyHex, v := range in {
		keyBytes, err := hex.DecodeString(keyHex)
		if err != nil {
			return err
		}
		if len(keyBytes) != 32 {
			return fmt.Errorf("position key %q is not 32 bytes", keyHex)
		}
		liquidity, err := uint256.FromDecimal(v.Liquidity)
		if err != nil {
			return err
		}
		inside0, err := uint256.FromDecimal(v.FeeGrowthInside0LastX128)
		if err != nil {
			return err
		}
		inside1, err := uint256.FromDecimal(v.FeeGrowthInside1LastX128)
		if err != nil {
			return err
		}
		var key [32]byte
		copy(key[:], keyBytes)
		positions[key] = &Position{
			Liquidity:                liquidity,
			FeeGrowthInside0LastX128: inside0,
			FeeGrowthInside1LastX128: inside1,
		}
	}
	pl.positions = positions
	return nil
}

type poolJSON struct {
	Token0               string          `json:"token0"`
	Token1               string          `json:"token1"`
	Fee                  uint32          `json:"fee"`
	TickSpacing          int32           `json:"tickSpacing"`
	SqrtPriceX96         string          `json:"sqrtPriceX96"`
	Tick                 int32           `json:"tick"`
	Liquidity            string          `json:"liquidity"`
	LPFee                uint32          `json:"lpFee"`
	ProtocolFee          uint8           `json:"protocolFee"`
	FeeGrowthGlobal0X128 string          `json:"feeGrowthGlobal0X128"`
	FeeGrowthGlobal1X128 string          `json:"feeGrowthGlobal1X128"`
	Ticks                *TickTable      `json:"ticks"`
	Bitmap               *TickBitmap     `json:"bitmap"`
	Positions            *PositionLedger `json:"positions"`
}

// MarshalJSON snapshots the full pool state, used by the snapshot
// package to persist a pool between process restarts.
func (p *Pool) MarshalJSON() ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return json.Marshal(poolJSON{
		Token0:               p.key.Token0.Hex(),
		Token1:               p.key.Token1.Hex(),
		Fee:                  p.key.Fee,
		TickSpacing:          p.key.TickSpacing,
		SqrtPriceX96:         p.sqrtPriceX96.Dec(),
		Tick:                 p.tick,
		Liquidity:            p.liquidity.Dec(),
		LPFee:                p.lpFee,
		ProtocolFee:          p.protocolFee,
		FeeGrowthGlobal0X128: p.feeGrowthGlobal0X128.Dec(),
		FeeGrowthGlobal1X128: p.feeGrowthGlobal1X128.Dec(),
		Ticks:                p.ticks,
		Bitmap:               p.bitmap,
		Positions:            p.positions,
	})
}

// UnmarshalJSON restores a pool previously captured by MarshalJSON.
// The receiver must be a zero-value *Pool obtained via new(Pool); its
// mutex starts unlocked so no separate construction step is needed.
func (p *Pool) UnmarshalJSON(data []byte) error {
	in := poolJSON{Ticks: NewTickTable(), Bitmap: NewTickBitmap(), Positions: NewPositionLedger()}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	key, err := NewPoolKey(common.HexToAddress(in.Token0), common.HexToAddress(in.Token1), in.Fee, in.TickSpacing)
	if err != nil {
		return err
	}
	sqrtPrice, err := uint256.FromDecimal(in.SqrtPriceX96)
	if err != nil {
		return err
	}
	liquidity, err := uint256.FromDecimal(in.Liquidity)
	if err != nil {
		return err
	}
	g0, err := uint256.FromDecimal(in.FeeGrowthGlobal0X128)
	if err != nil {
		return err
	}
	g1, err := uint256.FromDecimal(in.FeeGrowthGlobal1X128)
	if err != nil {
		return err
	}

	p.key = key
	p.sqrtPriceX96 = sqrtPrice
	p.tick = in.Tick
	p.liquidity = liquidity
	p.lpFee = in.LPFee
	p.protocolFee = in.ProtocolFee
	p.feeGrowthGlobal0X128 = g0
	p.feeGrowthGlobal1X128 = g1
	p.ticks = in.Ticks
	p.bitmap = in.Bitmap
	p.positions = in.Positions
	return nil
}
