// Package replay decodes ABI-encoded NonfungiblePositionManager-style
// logs — the kind an indexer would have already pulled off-chain —
// and replays them as poolcore operations, so a pool's state can be
// reconstructed from a historical log feed without a live RPC
// connection.
package replay

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
)

// Event signatures. IncreaseLiquiditySig, DecreaseLiquiditySig,
// CollectSig and TransferSig are the topics of the deployed Uniswap v3
// NonfungiblePositionManager events. MintSig is the topic of the Uniswap
// v3 pool contract's Mint event, whose layout is not the one
// ParseMintEvent decodes (see MintEvent).
var (
	MintSig              = common.HexToHash("0x7a53080ba414158be7ec69b987b5fb7d07dee101fe85488f0853ae16239d0bde")
	IncreaseLiquiditySig = common.HexToHash("0x3067048beee31b25b2f1681f88dac838c8bba36af25bfb2b7cf7473a5847e35f")
	DecreaseLiquiditySig = common.HexToHash("0x26f6a048ee9138f2c0ce266f322cb99228e8d619ae2bff30c67f8dcf9d2377b4")
	CollectSig           = common.HexToHash("0x40d0efd1a53d60ecbf40971b9daf7dc90178c3aadc7aab1765632738fa8b8f01")
	TransferSig          = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")
)

var uint256ABIType, _ = abi.NewType("uint256", "", nil)

// MintEvent corresponds to this package's Mint layout: tokenId in topic
// 1; owner, tickLower, tickUpper, pool and amount as data words. A pool
// contract's Mint log carries 128 data bytes and ParseMintEvent rejects
// it as short.
type MintEvent struct {
	TokenID   uint64
	Owner     common.Address
	TickLower int32
	TickUpper int32
	Pool      common.Address
	Amount    *uint256.Int
}

// IncreaseLiquidityEvent corresponds to
// IncreaseLiquidity(tokenId, liquidity, amount0, amount1).
type IncreaseLiquidityEvent struct {
	TokenID   uint64
	Liquidity *uint256.Int
	Amount0   *uint256.Int
	Amount1   *uint256.Int
}

// DecreaseLiquidityEvent corresponds to
// DecreaseLiquidity(tokenId, liquidity, amount0, amount1).
type DecreaseLiquidityEvent struct {
	TokenID   uint64
	Liquidity *uint256.Int
	Amount0   *uint256.Int
	Amount1   *uint256.Int
}

// CollectEvent corresponds to Collect(tokenId, recipient, amount0,
// amount1); the recipient word is skipped.
type CollectEvent struct {
	TokenID uint64
	Amount0 *uint256.Int
	Amount1 *uint256.Int
}

// TransferEvent corresponds to Transfer(from, to, tokenId).
type TransferEvent struct {
	TokenID uint64
	From    common.Address
	To      common.Address
}

func readTokenID(topic common.Hash) (uint64, error) {
	raw, err := abi.ReadInteger(uint256ABIType, topic.Bytes())
	if err != nil {
		return 0, err
	}
	v, ok := raw.(*big.Int)
	if !ok {
		return 0, fmt.Errorf("replay: could not read token ID from topic")
	}
	return v.Uint64(), nil
}

func uint256FromWord(data []byte) *uint256.Int {
	return new(uint256.Int).SetBytes(data)
}

// signedWordToTick interprets a 32-byte ABI word as a two's-complement
// signed integer and narrows it to int32 — ticks are ABI-encoded as
// int24, sign-extended to a full word, so a naive unsigned SetBytes
// would read a negative tick as a huge positive one.
func signedWordToTick(data []byte) int32 {
	v := new(big.Int).SetBytes(data)
	if data[0]&0x80 != 0 {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), 256))
	}
	return int32(v.Int64())
}

// ParseMintEvent decodes a Mint log.
func ParseMintEvent(log *types.Log) (*MintEvent, error) {
	if len(log.Topics) < 2 {
		return nil, fmt.Errorf("replay: not enough topics for Mint event")
	}
	tokenID, err := readTokenID(log.Topics[1])
	if err != nil {
		return nil, err
	}
	data := log.Data
	if len(data) < 160 {
		return nil, fmt.Errorf("replay: short Mint event data")
	}
	return &MintEvent{
		TokenID:   tokenID,
		Owner:     common.BytesToAddress(data[:32]),
		TickLower: signedWordToTick(data[32:64]),
		TickUpper: signedWordToTick(data[64:96]),
		Pool:      common.BytesToAddress(data[96:128]),
		Amount:    uint256FromWord(data[128:160]),
	}, nil
}

// ParseIncreaseLiquidityEvent decodes an IncreaseLiquidity log.
func ParseIncreaseLiquidityEvent(log *types.Log) (*IncreaseLiquidityEvent, error) {
	if len(log.Topics) < 2 {
		return nil, fmt.Errorf("replay: not enough topics for IncreaseLiquidity event")
	}
	tokenID, err := readTokenID(log.Topics[1])
	if err != nil {
		return nil, err
	}
	data := log.Data
	if len(data) < 96 {
		return nil, fmt.Errorf("replay: short IncreaseLiquidity event data")
	}
	return &IncreaseLiquidityEvent{
		TokenID:   tokenID,
		Liquidity: uint256FromWord(data[:32]),
		Amount0:   uint256FromWord(data[32:64]),
		Amount1:   uint256FromWord(data[64:96]),
	}, nil
}

// ParseDecreaseLiquidityEvent decodes a DecreaseLiquidity log.
func ParseDecreaseLiquidityEvent(log *types.Log) (*DecreaseLiquidityEvent, error) {
	if len(log.Topics) < 2 {
		return nil, fmt.Errorf("replay: not enough topics for DecreaseLiquidity event")
	}
	tokenID, err := readTokenID(log.Topics[1])
	if err != nil {
		return nil, err
	}
	data := log.Data
	if len(data) < 96 {
		return nil, fmt.Errorf("replay: short DecreaseLiquidity event data")
	}
	return &DecreaseLiquidityEvent{
		TokenID:   tokenID,
		Liquidity: uint256FromWord(data[:32]),
		Amount0:   uint256FromWord(data[32:64]),
		Amount1:   uint256FromWord(data[64:96]),
	}, nil
}

// ParseCollectEvent decodes a Collect log.
func ParseCollectEvent(log *types.Log) (*CollectEvent, error) {
	if len(log.Topics) < 2 {
		return nil, fmt.Errorf("replay: not enough topics for Collect event")
	}
	tokenID, err := readTokenID(log.Topics[1])
	if err != nil {
		return nil, err
	}
	data := log.Data
	if len(data) < 96 {
		return nil, fmt.Errorf("replay: short Collect event data")
	}
	return &CollectEvent{
		TokenID: tokenID,
		Amount0: uint256FromWord(data[32:64]),
		Amount1: uint256FromWord(data[64:96]),
	}, nil
}

// ParseTransferEvent decodes an ERC-721 Transfer log.
func ParseTransferEvent(log *types.Log) (*TransferEvent, error) {
	if len(log.Topics) < 4 {
		return nil, fmt.Errorf("replay: not enough topics for Transfer event")
	}
	tokenID, err := readTokenID(log.Topics[3])
	if err != nil {
		return nil, err
	}
	return &TransferEvent{
		TokenID: tokenID,
		From:    common.BytesToAddress(log.Topics[1].Bytes()),
		To:      common.BytesToAddress(log.Topics[2].Bytes()),
	}, nil
}
