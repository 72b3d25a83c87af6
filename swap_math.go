package poolcore

import "github.com/holiman/uint256"

// SwapStepResult is the outcome of consuming a portion of the
// remaining swap amount against a single tick-to-tick price segment.
type SwapStepResult struct {
	SqrtPriceNextX96 *uint256.Int
	AmountIn         *uint256.Int
	AmountOut        *uint256.Int
	FeeAmount        *uint256.Int
}

// ComputeSwapStep advances the price from sqrtPriceCurrentX96 towards
// sqrtPriceTargetX96 by as much of amountRemaining as the available
// liquidity allows, charging feePips along the way. exactIn selects
// whether amountRemaining is an input cap (true) or an output cap
// (false).
func ComputeSwapStep(
	sqrtPriceCurrentX96, sqrtPriceTargetX96, liquidity, amountRemaining *uint256.Int,
	feePips uint32,
	exactIn bool,
) (SwapStepResult, error) {
	zeroForOne := sqrtPriceCurrentX96.Cmp(sqrtPriceTargetX96) >= 0

	var result SwapStepResult

	if exactIn {
		amountRemainingLessFee, err := MulDiv(amountRemaining, uint256.NewInt(uint64(MaxSwapFee-feePips)), uint256.NewInt(MaxSwapFee))
		if err != nil {
			return result, err
		}

		var amountIn *uint256.Int
		if zeroForOne {
			amountIn, err = GetAmount0Delta(sqrtPriceTargetX96, sqrtPriceCurrentX96, liquidity, true)
		} else {
			amountIn, err = GetAmount1Delta(sqrtPriceCurrentX96, sqrtPriceTargetX96, liquidity, true)
		}
		if err != nil {
			return result, err
		}

		var sqrtPriceNext *uint256.Int
		var feeAmount *uint256.Int
		if amountRemainingLessFee.Cmp(amountIn) >= 0 {
			sqrtPriceNext = sqrtPriceTargetX96
			if feePips == MaxSwapFee {
				feeAmount = new(uint256.Int).Set(amountIn)
			} else {
				feeAmount, err = MulDivRoundingUp(amountIn, uint256.NewInt(uint64(feePips)), uint256.NewInt(MaxSwapFee-uint64(feePips)))
				if err != nil {
					return result, err
				}
			}
		} else {
			sqrtPriceNext, err = GetNextSqrtPriceFromInput(sqrtPriceCurrentX96, liquidity, amountRemainingLessFee, zeroForOne)
			if err != nil {
				return result, err
			}
			amountIn = amountRemainingLessFee
			feeAmount = new(uint256.Int).Sub(amountRemaining, amountRemainingLessFee)
		}

		var amountOut *uint256.Int
		if zeroForOne {
			amountOut, err = GetAmount1Delta(sqrtPriceNext, sqrtPriceCurrentX96, liquidity, false)
		} else {
			amountOut, err = GetAmount0Delta(sqrtPriceCurrentX96, sqrtPriceNext, liquidity, false)
		}
		if err != nil {
			return result, err
		}

		result.SqrtPriceNextX96 = sqrtPriceNext
		result.AmountIn = amountIn
		result.AmountOut = amountOut
		result.FeeAmount = feeAmount
		return result, nil
	}

	if feePips >= MaxSwapFee {
		return result, ErrInvalidSwapFee
	}

	var amountOut *uint256.Int
	var err error
	if zeroForOne {
		amountOut, err = GetAmount1Delta(sqrtPriceTargetX96, sqrtPriceCurrentX96, liquidity, false)
	} else {
		amountOut, err = GetAmount0Delta(sqrtPriceCurrentX96, sqrtPriceTargetX96, liquidity, false)
	}
	if err != nil {
		return result, err
	}

	var sqrtPriceNext *uint256.Int
	if amountRemaining.Cmp(amountOut) >= 0 {
		sqrtPriceNext = sqrtPriceTargetX96
	} else {
		sqrtPriceNext, err = GetNextSqrtPriceFromOutput(sqrtPriceCurrentX96, liquidity, amountRemaining, zeroForOne)
		if err != nil {
			return result, err
		}
		amountOut = amountRemaining
	}

	var amountIn *uint256.Int
	if zeroForOne {
		amountIn, err = GetAmount0Delta(sqrtPriceNext, sqrtPriceCurrentX96, liquidity, true)
	} else {
		amountIn, err = GetAmount1Delta(sqrtPriceCurrentX96, sqrtPriceNext, liquidity, true)
	}
	if err != nil {
		return result, err
	}

	feeAmount, err := MulDivRoundingUp(amountIn, uint256.NewInt(uint64(feePips)), uint256.NewInt(MaxSwapFee-uint64(feePips)))
	if err != nil {
		return result, err
	}

	result.SqrtPriceNextX96 = sqrtPriceNext
	result.AmountIn = amountIn
	result.AmountOut = amountOut
	result.FeeAmount = feeAmount
	return result, nil
}
