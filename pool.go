package poolcore

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
)

// Pool is the top-level state machine: current √P, current tick,
// active liquidity, the two fee-growth accumulators, the
// LP/protocol fee, and the tick table / bitmap / position ledger it
// exclusively owns. All mutation goes through Initialize,
// ModifyLiquidity, Swap, SetLPFee and SetProtocolFee, each of which
// executes atomically under the pool's own lock.
type Pool struct {
	mu sync.RWMutex

	key PoolKey

	sqrtPriceX96 *uint256.Int
	tick         int32
	liquidity    *uint256.Int

	lpFee       uint32
	protocolFee uint8

	feeGrowthGlobal0X128 *uint256.Int
	feeGrowthGlobal1X128 *uint256.Int

	ticks     *TickTable
	bitmap    *TickBitmap
	positions *PositionLedger
}

// NewPool returns an uninitialized pool for key. Call Initialize
// before any other mutating operation.
func NewPool(key PoolKey) *Pool {
	return &Pool{
		key:                  key,
		sqrtPriceX96:         uint256.NewInt(0),
		liquidity:            uint256.NewInt(0),
		feeGrowthGlobal0X128: uint256.NewInt(0),
		feeGrowthGlobal1X128: uint256.NewInt(0),
		ticks:                NewTickTable(),
		bitmap:               NewTickBitmap(),
		positions:            NewPositionLedger(),
	}
}

// Key returns the pool's identity tuple.
func (p *Pool) Key() PoolKey {
	return p.key
}

// Clone deep-copies the pool, used by callers that want to simulate a
// swap without mutating the live state.
func (p *Pool) Clone() *Pool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return &Pool{
		key:                  p.key,
		sqrtPriceX96:         new(uint256.Int).Set(p.sqrtPriceX96),
		tick:                 p.tick,
		liquidity:            new(uint256.Int).Set(p.liquidity),
		lpFee:                p.lpFee,
		protocolFee:          p.protocolFee,
		feeGrowthGlobal0X128: new(uint256.Int).Set(p.feeGrowthGlobal0X128),
		feeGrowthGlobal1X128: new(uint256.Int).Set(p.feeGrowthGlobal1X128),
		ticks:                p.ticks.Clone(),
		bitmap:               p.bitmap.Clone(),
		positions:            p.positions.Clone(),
	}
}

// SqrtPriceX96 returns the current √P under a shared lock; callers may
// read derived immutable quantities concurrently with other readers.
func (p *Pool) SqrtPriceX96() *uint256.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return new(uint256.Int).Set(p.sqrtPriceX96)
}

// Tick returns the current tick.
func (p *Pool) Tick() int32 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tick
}

// Liquidity returns the active in-range liquidity.
func (p *Pool) Liquidity() *uint256.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return new(uint256.Int).Set(p.liquidity)
}

// Initialize sets the pool's starting price and LP fee, requiring the
// pool be previously uninitialized.
func (p *Pool) Initialize(sqrtPriceX96 *uint256.Int, lpFee uint32) (int32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.sqrtPriceX96.IsZero() {
		return 0, ErrPoolAlreadyInitialized
	}
	if lpFee > MaxSwapFee {
		return 0, ErrInvalidSwapFee
	}

	tick, err := GetTickAtSqrtPrice(sqrtPriceX96)
	if err != nil {
		return 0, err
	}

	p.sqrtPriceX96 = new(uint256.Int).Set(sqrtPriceX96)
	p.tick = tick
	p.lpFee = lpFee
	p.protocolFee = 0
	p.ticks.getOrCreate(tick)

	logrus.WithFields(logrus.Fields{"tick": tick, "sqrtPriceX96": sqrtPriceX96.Dec()}).Debug("pool initialized")
	return tick, nil
}

// SetLPFee updates the pool's LP fee. Requires the pool be initialized.
func (p *Pool) SetLPFee(lpFee uint32) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sqrtPriceX96.IsZero() {
		return ErrPoolNotInitialized
	}
	if lpFee > MaxSwapFee {
		return ErrInvalidSwapFee
	}
	p.lpFee = lpFee
	return nil
}

// SetProtocolFee updates the protocol-fee byte. Requires the pool be
// initialized.
func (p *Pool) SetProtocolFee(protocolFee uint8) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sqrtPriceX96.IsZero() {
		return ErrPoolNotInitialized
	}
	p.protocolFee = protocolFee
	return nil
}

// ModifyLiquidityParams is the value-only request record for a
// ModifyLiquidity call.
type ModifyLiquidityParams struct {
	Owner          [20]byte
	TickLower      int32
	TickUpper      int32
	LiquidityDelta Int128
	Salt           [32]byte
}

// ModifyLiquidityResult carries the token deltas and fees owed back to
// the caller, who is responsible for the actual currency settlement.
type ModifyLiquidityResult struct {
	Amount0 Int128
	Amount1 Int128
	Owed0   *uint256.Int
	Owed1   *uint256.Int
}

func (p *Pool) checkTicks(tickLower, tickUpper int32) error {
	if tickLower >= tickUpper {
		return ErrTicksMisordered
	}
	if tickLower < MinTick {
		return ErrTickLowerOutOfBounds
	}
	if tickUpper > MaxTick {
		return ErrTickUpperOutOfBounds
	}
	return nil
}

// ModifyLiquidity implements the standard five-step liquidity-change
// procedure: update both tick boundaries, recompute fee-growth-inside,
// update the position, and compute the signed token amounts.
func (p *Pool) ModifyLiquidity(params ModifyLiquidityParams) (ModifyLiquidityResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var result ModifyLiquidityResult

	if p.sqrtPriceX96.IsZero() {
		return result, ErrPoolNotInitialized
	}
	if err := p.checkTicks(params.TickLower, params.TickUpper); err != nil {
		return result, err
	}

	maxLiquidityPerTick := MaxLiquidityPerTick(p.key.TickSpacing)

	var flippedLower, flippedUpper bool
	if !params.LiquidityDelta.IsZero() {
		var err error
		flippedLower, _, err = p.ticks.Update(
			params.TickLower, params.LiquidityDelta, p.tick,
			p.feeGrowthGlobal0X128, p.feeGrowthGlobal1X128,
			false, maxLiquidityPerTick,
		)
		if err != nil {
			return result, fmt.Errorf("updating lower tick %d: %w", params.TickLower, err)
		}
		flippedUpper, _, err = p.ticks.Update(
			params.TickUpper, params.LiquidityDelta, p.tick,
			p.feeGrowthGlobal0X128, p.feeGrowthGlobal1X128,
			true, maxLiquidityPerTick,
		)
		if err != nil {
			return result, fmt.Errorf("updating upper tick %d: %w", params.TickUpper, err)
		}

		if flippedLower {
			if err := p.bitmap.Flip(params.TickLower, p.key.TickSpacing); err != nil {
				return result, err
			}
		}
		if flippedUpper {
			if err := p.bitmap.Flip(params.TickUpper, p.key.TickSpacing); err != nil {
				return result, err
			}
		}
	}

	feeGrowthInside0, feeGrowthInside1 := p.ticks.GetFeeGrowthInside(
		params.TickLower, params.TickUpper, p.tick,
		p.feeGrowthGlobal0X128, p.feeGrowthGlobal1X128,
	)

	key := PositionKey(addressFromBytes(params.Owner), params.TickLower, params.TickUpper, params.Salt)
	owed0, owed1, err := p.positions.Update(key, params.LiquidityDelta, feeGrowthInside0, feeGrowthInside1)
	if err != nil {
		return result, err
	}
	result.Owed0, result.Owed1 = owed0, owed1

	if params.LiquidityDelta.Neg {
		if flippedLower {
			p.ticks.Clear(params.TickLower)
		}
		if flippedUpper {
			p.ticks.Clear(params.TickUpper)
		}
	}

	amount0, amount1, err := p.modifyLiquidityAmounts(params.TickLower, params.TickUpper, params.LiquidityDelta)
	if err != nil {
		return result, err
	}
	result.Amount0, result.Amount1 = amount0, amount1

	logrus.WithFields(logrus.Fields{
		"tickLower": params.TickLower, "tickUpper": params.TickUpper,
		"delta": params.LiquidityDelta.Abs.Dec(), "negative": params.LiquidityDelta.Neg,
	}).Debug("liquidity modified")

	return result, nil
}

// modifyLiquidityAmounts computes the signed token0/token1 amounts for
// a liquidity change, and — when the range straddles the current tick
// — updates pool.liquidity.
func (p *Pool) modifyLiquidityAmounts(tickLower, tickUpper int32, liquidityDelta Int128) (Int128, Int128, error) {
	roundUp := !liquidityDelta.Neg

	sqrtPriceLower, err := GetSqrtPriceAtTick(tickLower)
	if err != nil {
		return Int128{}, Int128{}, err
	}
	sqrtPriceUpper, err := GetSqrtPriceAtTick(tickUpper)
	if err != nil {
		return Int128{}, Int128{}, err
	}

	switch {
	case p.tick < tickLower:
		amt0, err := GetAmount0Delta(sqrtPriceLower, sqrtPriceUpper, liquidityDelta.Abs, roundUp)
		if err != nil {
			return Int128{}, Int128{}, err
		}
		return NewInt128(amt0, liquidityDelta.Neg), ZeroInt128(), nil

	case p.tick < tickUpper:
		amt0, err := GetAmount0Delta(p.sqrtPriceX96, sqrtPriceUpper, liquidityDelta.Abs, roundUp)
		if err != nil {
			return Int128{}, Int128{}, err
		}
		amt1, err := GetAmount1Delta(sqrtPriceLower, p.sqrtPriceX96, liquidityDelta.Abs, roundUp)
		if err != nil {
			return Int128{}, Int128{}, err
		}
		if !liquidityDelta.IsZero() {
			newLiquidity, err := AddDelta(p.liquidity, liquidityDelta)
			if err != nil {
				return Int128{}, Int128{}, err
			}
			p.liquidity = newLiquidity
		}
		return NewInt128(amt0, liquidityDelta.Neg), NewInt128(amt1, liquidityDelta.Neg), nil

	default:
		amt1, err := GetAmount1Delta(sqrtPriceLower, sqrtPriceUpper, liquidityDelta.Abs, roundUp)
		if err != nil {
			return Int128{}, Int128{}, err
		}
		return ZeroInt128(), NewInt128(amt1, liquidityDelta.Neg), nil
	}
}

func addressFromBytes(b [20]byte) common.Address {
	return common.Address(b)
}

// SwapParams is the value-only request record for a Swap call.
type SwapParams struct {
	ZeroForOne        bool
	AmountSpecified   Int128
	SqrtPriceLimitX96 *uint256.Int
}

// SwapResult carries the signed token deltas of the completed swap.
type SwapResult struct {
	Amount0 Int128
	Amount1 Int128
}

type swapState struct {
	amountRemaining     *uint256.Int
	amountCalculated    *uint256.Int
	sqrtPriceX96        *uint256.Int
	tick                int32
	liquidity           *uint256.Int
	feeGrowthGlobalX128 *uint256.Int
}

type swapStepResult struct {
	sqrtPriceStartX96 *uint256.Int
	tickNext          int32
	initialized       bool
	sqrtPriceNextX96  *uint256.Int
	amountIn          *uint256.Int
	amountOut         *uint256.Int
	feeAmount         *uint256.Int
}

// Swap implements the standard tick-crossing loop: repeatedly find the
// next initialized tick in direction, compute a swap step against it
// or the price limit, fold the step into the running totals, and cross
// the tick if the step landed exactly on its boundary. Bounded by the
// same "walked too many ticks" guard a tick-by-tick simulator needs, so
// a corrupt bitmap cannot spin the engine forever.
func (p *Pool) Swap(params SwapParams) (SwapResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var result SwapResult

	if p.sqrtPriceX96.IsZero() {
		return result, ErrPoolNotInitialized
	}

	if params.ZeroForOne {
		if params.SqrtPriceLimitX96.Cmp(p.sqrtPriceX96) >= 0 {
			return result, ErrPriceLimitAlreadyExceeded
		}
		if params.SqrtPriceLimitX96.Cmp(MinSqrtPrice) <= 0 {
			return result, ErrPriceLimitOutOfBounds
		}
	} else {
		if params.SqrtPriceLimitX96.Cmp(p.sqrtPriceX96) <= 0 {
			return result, ErrPriceLimitAlreadyExceeded
		}
		if params.SqrtPriceLimitX96.Cmp(MaxSqrtPrice) >= 0 {
			return result, ErrPriceLimitOutOfBounds
		}
	}

	// amountSpecified >= 0 selects exact-input (zero is always encoded
	// positive).
	exactInput := !params.AmountSpecified.Neg
	exactOutput := !exactInput

	if p.lpFee >= MaxSwapFee && exactOutput && !params.AmountSpecified.IsZero() {
		return result, ErrInvalidForExactOutput
	}

	state := &swapState{
		amountRemaining:  new(uint256.Int).Set(params.AmountSpecified.Abs),
		amountCalculated: uint256.NewInt(0),
		sqrtPriceX96:     new(uint256.Int).Set(p.sqrtPriceX96),
		tick:             p.tick,
		liquidity:        new(uint256.Int).Set(p.liquidity),
	}
	if params.ZeroForOne {
		state.feeGrowthGlobalX128 = new(uint256.Int).Set(p.feeGrowthGlobal0X128)
	} else {
		state.feeGrowthGlobalX128 = new(uint256.Int).Set(p.feeGrowthGlobal1X128)
	}

	logrus.WithFields(logrus.Fields{
		"zeroForOne": params.ZeroForOne, "exactInput": exactInput,
		"amountSpecified": params.AmountSpecified.Abs.Dec(),
	}).Debug("swap started")

	loopCount := 0
	for !state.amountRemaining.IsZero() && state.sqrtPriceX96.Cmp(params.SqrtPriceLimitX96) != 0 {
		loopCount++
		if loopCount > 1000 {
			return result, fmt.Errorf("poolcore: swap exceeded 1000 tick crossings")
		}

		step := swapStepResult{sqrtPriceStartX96: state.sqrtPriceX96}

		tickNext, initialized, err := p.bitmap.NextInitializedTickWithinOneWord(state.tick, p.key.TickSpacing, params.ZeroForOne)
		if err != nil {
			return result, fmt.Errorf("finding next tick: %w", err)
		}
		if tickNext < MinTick {
			tickNext = MinTick
		} else if tickNext > MaxTick {
			tickNext = MaxTick
		}
		step.tickNext = tickNext
		step.initialized = initialized

		sqrtPriceNext, err := GetSqrtPriceAtTick(tickNext)
		if err != nil {
			return result, fmt.Errorf("sqrt price at tick %d: %w", tickNext, err)
		}
		step.sqrtPriceNextX96 = sqrtPriceNext

		target := sqrtPriceNext
		if params.ZeroForOne {
			if sqrtPriceNext.Cmp(params.SqrtPriceLimitX96) < 0 {
				target = params.SqrtPriceLimitX96
			}
		} else {
			if sqrtPriceNext.Cmp(params.SqrtPriceLimitX96) > 0 {
				target = params.SqrtPriceLimitX96
			}
		}

		stepOut, err := ComputeSwapStep(state.sqrtPriceX96, target, state.liquidity, state.amountRemaining, p.lpFee, !exactOutput)
		if err != nil {
			return result, fmt.Errorf("computing swap step: %w", err)
		}
		state.sqrtPriceX96 = stepOut.SqrtPriceNextX96
		step.amountIn, step.amountOut, step.feeAmount = stepOut.AmountIn, stepOut.AmountOut, stepOut.FeeAmount

		if exactOutput {
			state.amountRemaining = new(uint256.Int).Sub(state.amountRemaining, step.amountOut)
			state.amountCalculated = new(uint256.Int).Add(state.amountCalculated, new(uint256.Int).Add(step.amountIn, step.feeAmount))
		} else {
			state.amountRemaining = new(uint256.Int).Sub(state.amountRemaining, new(uint256.Int).Add(step.amountIn, step.feeAmount))
			state.amountCalculated = new(uint256.Int).Add(state.amountCalculated, step.amountOut)
		}

		if !state.liquidity.IsZero() {
			delta, err := MulDiv(step.feeAmount, Q128, state.liquidity)
			if err != nil {
				return result, err
			}
			state.feeGrowthGlobalX128 = new(uint256.Int).Add(state.feeGrowthGlobalX128, delta)
		}

		if state.sqrtPriceX96.Cmp(step.sqrtPriceNextX96) == 0 {
			if step.initialized {
				var g0, g1 *uint256.Int
				if params.ZeroForOne {
					g0, g1 = state.feeGrowthGlobalX128, p.feeGrowthGlobal1X128
				} else {
					g0, g1 = p.feeGrowthGlobal0X128, state.feeGrowthGlobalX128
				}
				liquidityNet := p.ticks.Cross(step.tickNext, g0, g1)
				if params.ZeroForOne {
					liquidityNet = liquidityNet.Negated()
				}
				newLiquidity, err := AddDelta(state.liquidity, liquidityNet)
				if err != nil {
					return result, fmt.Errorf("crossing tick %d: %w", step.tickNext, err)
				}
				state.liquidity = newLiquidity
			}
			if params.ZeroForOne {
				state.tick = step.tickNext - 1
			} else {
				state.tick = step.tickNext
			}
		} else if state.sqrtPriceX96.Cmp(step.sqrtPriceStartX96) != 0 {
			newTick, err := GetTickAtSqrtPrice(state.sqrtPriceX96)
			if err != nil {
				return result, fmt.Errorf("tick at price %s: %w", state.sqrtPriceX96.Dec(), err)
			}
			state.tick = newTick
		}

		logrus.WithFields(logrus.Fields{
			"tick": state.tick, "amountIn": step.amountIn.Dec(), "amountOut": step.amountOut.Dec(),
		}).Trace("swap step")
	}

	p.sqrtPriceX96 = state.sqrtPriceX96
	p.tick = state.tick
	p.liquidity = state.liquidity
	if params.ZeroForOne {
		p.feeGrowthGlobal0X128 = state.feeGrowthGlobalX128
	} else {
		p.feeGrowthGlobal1X128 = state.feeGrowthGlobalX128
	}

	amountSpecifiedSigned := NewInt128(params.AmountSpecified.Abs, params.AmountSpecified.Neg)
	remaining := NewInt128(state.amountRemaining, params.AmountSpecified.Neg)
	consumed := Sub128(amountSpecifiedSigned, remaining)
	// calculated is the leg not pinned by amountSpecified: negative
	// (pool pays out) on exact-input, positive (user owes) on
	// exact-output.
	calculated := NewInt128(state.amountCalculated, exactInput)

	if params.ZeroForOne == exactInput {
		result.Amount0 = consumed
		result.Amount1 = calculated
	} else {
		result.Amount0 = calculated
		result.Amount1 = consumed
	}

	logrus.WithFields(logrus.Fields{
		"amount0Neg": result.Amount0.Neg, "amount1Neg": result.Amount1.Neg, "tick": p.tick,
	}).Debug("swap complete")

	return result, nil
}
