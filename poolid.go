package poolcore

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// PoolKey identifies a pool by its (token0, token1, fee, tickSpacing)
// tuple. Token0 must be lexicographically less than Token1; this is
// enforced by NewPoolKey rather than by the caller, so a PoolKey value
// is always canonical.
type PoolKey struct {
	Token0      common.Address
	Token1      common.Address
	Fee         uint32
	TickSpacing int32
}

// NewPoolKey orders the two addresses and validates tick spacing.
func NewPoolKey(tokenA, tokenB common.Address, fee uint32, tickSpacing int32) (PoolKey, error) {
	if tickSpacing < MinTickSpacing || tickSpacing > MaxTickSpacing {
		return PoolKey{}, ErrTickSpacingOutOfBounds
	}
	token0, token1 := tokenA, tokenB
	switch {
	case tokenA == tokenB:
		return PoolKey{}, ErrInvalidTokenOrder
	case bytesLess(tokenB.Bytes(), tokenA.Bytes()):
		token0, token1 = tokenB, tokenA
	}
	return PoolKey{Token0: token0, Token1: token1, Fee: fee, TickSpacing: tickSpacing}, nil
}

func bytesLess(a, b []byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// ID returns the pool's identity: keccak256(token0 ‖ token1 ‖ fee ‖
// tick_spacing).
func (k PoolKey) ID() [32]byte {
	buf := make([]byte, 0, 20+20+4+4)
	buf = append(buf, k.Token0.Bytes()...)
	buf = append(buf, k.Token1.Bytes()...)
	var feeBuf, spacingBuf [4]byte
	binary.LittleEndian.PutUint32(feeBuf[:], k.Fee)
	binary.LittleEndian.PutUint32(spacingBuf[:], uint32(k.TickSpacing))
	buf = append(buf, feeBuf[:]...)
	buf = append(buf, spacingBuf[:]...)
	return [32]byte(crypto.Keccak256(buf))
}
