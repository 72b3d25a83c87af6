package poolcore

import "github.com/holiman/uint256"

// Int128 is a signed quantity, represented as (magnitude, sign)
// rather than Go's native signed
// integers: liquidityNet and currency deltas are fixed-width 128-bit
// values, and composing them out of a *uint256.Int magnitude lets the
// engine reuse the same overflow-free add/sub machinery as the rest of
// the fixed-point math (fullmath.go) instead of hand-rolling a second
// bignum path. Zero is always encoded as (0, positive). NewInt128 and
// Add128 do not bound the magnitude to 128 bits; AddDelta does.
type Int128 struct {
	Abs *uint256.Int
	Neg bool
}

// ZeroInt128 returns the canonical zero value.
func ZeroInt128() Int128 {
	return Int128{Abs: uint256.NewInt(0), Neg: false}
}

// NewInt128 builds a signed delta from an unsigned magnitude and sign.
// Zero is normalized to positive regardless of neg.
func NewInt128(abs *uint256.Int, neg bool) Int128 {
	if abs.IsZero() {
		neg = false
	}
	return Int128{Abs: new(uint256.Int).Set(abs), Neg: neg}
}

func (a Int128) IsZero() bool { return a.Abs.IsZero() }

// Negated returns -a.
func (a Int128) Negated() Int128 {
	return NewInt128(a.Abs, !a.Neg)
}

// Add128 returns a + b following the (magnitude, sign) rules: same
// sign adds magnitudes and keeps the sign; different signs subtract
// the smaller magnitude from the larger and take the sign of the
// larger.
func Add128(a, b Int128) Int128 {
	if a.Neg == b.Neg {
		return NewInt128(new(uint256.Int).Add(a.Abs, b.Abs), a.Neg)
	}
	switch a.Abs.Cmp(b.Abs) {
	case 0:
		return ZeroInt128()
	case 1:
		return NewInt128(new(uint256.Int).Sub(a.Abs, b.Abs), a.Neg)
	default:
		return NewInt128(new(uint256.Int).Sub(b.Abs, a.Abs), b.Neg)
	}
}

// Sub128 returns a - b, defined as a + (-b).
func Sub128(a, b Int128) Int128 {
	return Add128(a, b.Negated())
}

// AddDelta applies a signed liquidity delta to an unsigned 128-bit
// magnitude, trapping on overflow (delta positive) or underflow (delta
// negative) the way Solidity's checked arithmetic would.
func AddDelta(x *uint256.Int, delta Int128) (*uint256.Int, error) {
	if !delta.Neg {
		sum, overflow := new(uint256.Int).AddOverflow(x, delta.Abs)
		if overflow || sum.BitLen() > 128 {
			return nil, ErrOverflow
		}
		return sum, nil
	}
	if delta.Abs.Cmp(x) > 0 {
		return nil, ErrOverflow
	}
	return new(uint256.Int).Sub(x, delta.Abs), nil
}
