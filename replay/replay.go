package replay

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"

	"github.com/concentrated-go/poolcore"
)

// trackedPosition indexes a tokenID by the pool, owner and tick range
// it was minted against. poolcore.Pool already tracks fee growth and
// owed amounts per position internally, so the replayer only needs
// enough to route a tokenID back to the right pool, owner and tick
// range — no separate decimal-denominated fee bookkeeping.
type trackedPosition struct {
	PoolAddr  common.Address
	Owner     common.Address
	TickLower int32
	TickUpper int32
}

// Replayer applies a feed of already-fetched NonfungiblePositionManager
// logs to a set of registered poolcore.Pool instances, reconstructing
// their state without talking to a node. It is the offline counterpart
// to a live indexer: callers fetch logs however they like (a local
// archive, a block explorer export, a subgraph dump) and hand them to
// ProcessLog/Replay in ascending log order.
type Replayer struct {
	mu        sync.RWMutex
	pools     map[common.Address]*poolcore.Pool
	positions map[uint64]*trackedPosition
}

// NewReplayer returns an empty Replayer. Pools must be registered with
// RegisterPool before any log referencing them can be replayed.
func NewReplayer() *Replayer {
	return &Replayer{
		pools:     make(map[common.Address]*poolcore.Pool),
		positions: make(map[uint64]*trackedPosition),
	}
}

// RegisterPool associates a pool contract address with the in-memory
// engine that models it, so Mint/IncreaseLiquidity/DecreaseLiquidity
// logs naming that address can be routed to it.
func (r *Replayer) RegisterPool(addr common.Address, pool *poolcore.Pool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pools[addr] = pool
}

// Pool returns the engine registered for addr, if any.
func (r *Replayer) Pool(addr common.Address) (*poolcore.Pool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pools[addr]
	return p, ok
}

// ProcessLog decodes log by its topic-0 signature and applies the
// corresponding poolcore operation, returning the event kind handled
// ("mint", "increaseLiquidity", "decreaseLiquidity", "collect",
// "transfer") or an error if the log couldn't be decoded or applied.
// Logs with an unrecognized signature are skipped (kind "") rather
// than treated as an error, since a real log feed mixes in events this
// package has no opinion about.
func (r *Replayer) ProcessLog(log *types.Log) (string, error) {
	if len(log.Topics) == 0 {
		return "", nil
	}
	switch log.Topics[0] {
	case MintSig:
		ev, err := ParseMintEvent(log)
		if err != nil {
			return "", err
		}
		return "mint", r.applyMint(ev)
	case IncreaseLiquiditySig:
		ev, err := ParseIncreaseLiquidityEvent(log)
		if err != nil {
			return "", err
		}
		return "increaseLiquidity", r.applyIncreaseLiquidity(ev)
	case DecreaseLiquiditySig:
		ev, err := ParseDecreaseLiquidityEvent(log)
		if err != nil {
			return "", err
		}
		return "decreaseLiquidity", r.applyDecreaseLiquidity(ev)
	case CollectSig:
		ev, err := ParseCollectEvent(log)
		if err != nil {
			return "", err
		}
		return "collect", r.applyCollect(ev)
	case TransferSig:
		ev, err := ParseTransferEvent(log)
		if err != nil {
			return "", err
		}
		return "transfer", r.applyTransfer(ev)
	default:
		return "", nil
	}
}

// Replay applies logs in order, logging and skipping any log that
// fails to decode or apply rather than aborting the whole batch — one
// bad log shouldn't discard an otherwise-good replay. It returns the
// number of logs successfully applied.
func (r *Replayer) Replay(logs []*types.Log) int {
	applied := 0
	for _, log := range logs {
		kind, err := r.ProcessLog(log)
		if err != nil {
			logrus.WithError(err).WithField("txHash", log.TxHash.Hex()).Warn("replay: skipping log")
			continue
		}
		if kind != "" {
			applied++
		}
	}
	return applied
}

func addressToBytes(addr common.Address) [20]byte {
	return [20]byte(addr)
}

func (r *Replayer) applyMint(ev *MintEvent) error {
	pool, ok := r.Pool(ev.Pool)
	if !ok {
		return fmt.Errorf("replay: mint references unregistered pool %s", ev.Pool.Hex())
	}
	_, err := pool.ModifyLiquidity(poolcore.ModifyLiquidityParams{
		Owner:          addressToBytes(ev.Owner),
		TickLower:      ev.TickLower,
		TickUpper:      ev.TickUpper,
		LiquidityDelta: poolcore.NewInt128(ev.Amount, false),
	})
	if err != nil {
		return fmt.Errorf("replay: applying mint for token %d: %w", ev.TokenID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.positions[ev.TokenID]; ok {
		existing.TickLower, existing.TickUpper = ev.TickLower, ev.TickUpper
		return nil
	}
	r.positions[ev.TokenID] = &trackedPosition{
		PoolAddr:  ev.Pool,
		Owner:     ev.Owner,
		TickLower: ev.TickLower,
		TickUpper: ev.TickUpper,
	}
	return nil
}

func (r *Replayer) trackedPosition(tokenID uint64) (*trackedPosition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pos, ok := r.positions[tokenID]
	if !ok {
		return nil, fmt.Errorf("replay: no tracked position for token %d", tokenID)
	}
	return pos, nil
}

func (r *Replayer) applyIncreaseLiquidity(ev *IncreaseLiquidityEvent) error {
	pos, err := r.trackedPosition(ev.TokenID)
	if err != nil {
		return err
	}
	pool, ok := r.Pool(pos.PoolAddr)
	if !ok {
		return fmt.Errorf("replay: increaseLiquidity references unregistered pool %s", pos.PoolAddr.Hex())
	}
	_, err = pool.ModifyLiquidity(poolcore.ModifyLiquidityParams{
		Owner:          addressToBytes(pos.Owner),
		TickLower:      pos.TickLower,
		TickUpper:      pos.TickUpper,
		LiquidityDelta: poolcore.NewInt128(ev.Liquidity, false),
	})
	if err != nil {
		return fmt.Errorf("replay: applying increaseLiquidity for token %d: %w", ev.TokenID, err)
	}
	return nil
}

func (r *Replayer) applyDecreaseLiquidity(ev *DecreaseLiquidityEvent) error {
	pos, err := r.trackedPosition(ev.TokenID)
	if err != nil {
		return err
	}
	pool, ok := r.Pool(pos.PoolAddr)
	if !ok {
		return fmt.Errorf("replay: decreaseLiquidity references unregistered pool %s", pos.PoolAddr.Hex())
	}
	_, err = pool.ModifyLiquidity(poolcore.ModifyLiquidityParams{
		Owner:          addressToBytes(pos.Owner),
		TickLower:      pos.TickLower,
		TickUpper:      pos.TickUpper,
		LiquidityDelta: poolcore.NewInt128(ev.Liquidity, true),
	})
	if err != nil {
		return fmt.Errorf("replay: applying decreaseLiquidity for token %d: %w", ev.TokenID, err)
	}
	return nil
}

// applyCollect is bookkeeping only: collecting owed tokens withdraws
// them from the position's already-settled fee/amount balance without
// perturbing the AMM curve, so there's no poolcore.Pool call to make.
// It exists so ProcessLog can report "collect" rather than silently
// dropping the event, and so callers tracking token balances out of
// band have a hook to observe it.
func (r *Replayer) applyCollect(ev *CollectEvent) error {
	if _, err := r.trackedPosition(ev.TokenID); err != nil {
		return err
	}
	return nil
}

func (r *Replayer) applyTransfer(ev *TransferEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	pos, ok := r.positions[ev.TokenID]
	if !ok {
		return fmt.Errorf("replay: no tracked position for token %d", ev.TokenID)
	}
	if pos.Owner != ev.From {
		return fmt.Errorf("replay: token %d owner mismatch: tracked %s, log says %s", ev.TokenID, pos.Owner.Hex(), ev.From.Hex())
	}
	pos.Owner = ev.To
	return nil
}
