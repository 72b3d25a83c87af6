package poolcore

import "github.com/holiman/uint256"

// MulDiv computes floor(a*b/denominator) with a full 512-bit
// intermediate product, via holiman/uint256's MulDivOverflow (itself a
// split-into-128-bit-halves, schoolbook-long-division routine) — a
// thin, honestly-named wrapper rather than a reimplementation.
func MulDiv(a, b, denominator *uint256.Int) (*uint256.Int, error) {
	if denominator.IsZero() {
		return nil, ErrDenominatorZero
	}
	result, overflow := new(uint256.Int).MulDivOverflow(a, b, denominator)
	if overflow {
		return nil, ErrOverflow
	}
	return result, nil
}

// MulDivRoundingUp computes ceil(a*b/denominator), adding one whenever
// the true product is not evenly divisible.
func MulDivRoundingUp(a, b, denominator *uint256.Int) (*uint256.Int, error) {
	result, err := MulDiv(a, b, denominator)
	if err != nil {
		return nil, err
	}
	rem := MulMod(a, b, denominator)
	if !rem.IsZero() {
		if result.Cmp(maxUint256) == 0 {
			return nil, ErrOverflow
		}
		result = new(uint256.Int).AddUint64(result, 1)
	}
	return result, nil
}

// MulMod computes (a*b) mod m over the full 512-bit product.
func MulMod(a, b, m *uint256.Int) *uint256.Int {
	return new(uint256.Int).MulMod(a, b, m)
}
