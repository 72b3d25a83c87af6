package poolcore

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// Position is the per-owner ledger entry: how much liquidity an
// owner has contributed within a tick range, and the fee-growth
// snapshot taken at its last touch.
type Position struct {
	Liquidity                *uint256.Int
	FeeGrowthInside0LastX128 *uint256.Int
	FeeGrowthInside1LastX128 *uint256.Int
}

func newPosition() *Position {
	return &Position{
		Liquidity:                uint256.NewInt(0),
		FeeGrowthInside0LastX128: uint256.NewInt(0),
		FeeGrowthInside1LastX128: uint256.NewInt(0),
	}
}

func (p *Position) clone() *Position {
	return &Position{
		Liquidity:                new(uint256.Int).Set(p.Liquidity),
		FeeGrowthInside0LastX128: new(uint256.Int).Set(p.FeeGrowthInside0LastX128),
		FeeGrowthInside1LastX128: new(uint256.Int).Set(p.FeeGrowthInside1LastX128),
	}
}

// PositionKey serializes owner, tickLower, tickUpper and salt into a
// keccak256 preimage, using Go's native two's-complement int32
// encoding for the ticks rather than a bias-plus-magnitude scheme.
func PositionKey(owner common.Address, tickLower, tickUpper int32, salt [32]byte) [32]byte {
	buf := make([]byte, 0, len(owner)+4+4+len(salt))
	buf = append(buf, owner.Bytes()...)
	var tlBuf, tuBuf [4]byte
	binary.LittleEndian.PutUint32(tlBuf[:], uint32(tickLower))
	binary.LittleEndian.PutUint32(tuBuf[:], uint32(tickUpper))
	buf = append(buf, tlBuf[:]...)
	buf = append(buf, tuBuf[:]...)
	buf = append(buf, salt[:]...)
	return [32]byte(crypto.Keccak256(buf))
}

// PositionLedger is the sparse map from position key to Position.
type PositionLedger struct {
	positions map[[32]byte]*Position
}

// NewPositionLedger returns an empty ledger.
func NewPositionLedger() *PositionLedger {
	return &PositionLedger{positions: make(map[[32]byte]*Position)}
}

// Clone deep-copies the ledger.
func (pl *PositionLedger) Clone() *PositionLedger {
	out := NewPositionLedger()
	for k, v := range pl.positions {
		out.positions[k] = v.clone()
	}
	return out
}

// Get returns the position for key, or nil if it has never been
// touched.
func (pl *PositionLedger) Get(key [32]byte) *Position {
	return pl.positions[key]
}

func (pl *PositionLedger) getOrCreate(key [32]byte) *Position {
	p, ok := pl.positions[key]
	if !ok {
		p = newPosition()
		pl.positions[key] = p
	}
	return p
}

// Update applies a signed liquidity delta to the position at key and
// returns the token0/token1 fees owed since its last touch. A zero
// delta against an empty position is rejected: the key could never
// otherwise have come to exist legally.
func (pl *PositionLedger) Update(
	key [32]byte,
	liquidityDelta Int128,
	feeGrowthInside0X128, feeGrowthInside1X128 *uint256.Int,
) (owed0, owed1 *uint256.Int, err error) {
	pos := pl.getOrCreate(key)

	if liquidityDelta.IsZero() && pos.Liquidity.IsZero() {
		return nil, nil, ErrCannotUpdateEmptyPosition
	}

	owed0, err = feeOwed(feeGrowthInside0X128, pos.FeeGrowthInside0LastX128, pos.Liquidity)
	if err != nil {
		return nil, nil, err
	}
	owed1, err = feeOwed(feeGrowthInside1X128, pos.FeeGrowthInside1LastX128, pos.Liquidity)
	if err != nil {
		return nil, nil, err
	}

	if !liquidityDelta.IsZero() {
		newLiquidity, err := AddDelta(pos.Liquidity, liquidityDelta)
		if err != nil {
			return nil, nil, err
		}
		pos.Liquidity = newLiquidity
	}
	pos.FeeGrowthInside0LastX128 = new(uint256.Int).Set(feeGrowthInside0X128)
	pos.FeeGrowthInside1LastX128 = new(uint256.Int).Set(feeGrowthInside1X128)

	return owed0, owed1, nil
}

// feeOwed computes (feeInside - feeInsideLast) * liquidity / 2**128
// using the library's native modular (wrapping) subtraction.
func feeOwed(feeInside, feeInsideLast, liquidity *uint256.Int) (*uint256.Int, error) {
	delta := new(uint256.Int).Sub(feeInside, feeInsideLast)
	return MulDiv(delta, liquidity, Q128)
}
