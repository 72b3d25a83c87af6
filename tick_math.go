package poolcore

import (
	"math/big"

	"github.com/holiman/uint256"
)

// tickMagic holds the 20 precomputed constants used by binary
// exponentiation over sqrt(1.0001): magic[i] == 2**128 /
// sqrt(1.0001)**(2**i) in Q128.128, one per bit of the absolute tick value.
var tickMagic = [20]*uint256.Int{
	mustFromHex("0xfffcb933bd6fad37aa2d162d1a594001"),
	mustFromHex("0xfff97272373d413259a46990580e213a"),
	mustFromHex("0xfff2e50f5f656932ef12357cf3c7fdcc"),
	mustFromHex("0xffe5caca7e10e4e61c3624eaa0941cd0"),
	mustFromHex("0xffcb9843d60f6159c9db58835c926644"),
	mustFromHex("0xff973b41fa98c081472e6896dfb254c0"),
	mustFromHex("0xff2ea16466c96a3843ec78b326b52861"),
	mustFromHex("0xfe5dee046a99a2a811c461f1969c3053"),
	mustFromHex("0xfcbe86c7900a88aedcffc83b479aa3a4"),
	mustFromHex("0xf987a7253ac413176f2b074cf7815e54"),
	mustFromHex("0xf3392b0822b70005940c7a398e4b70f3"),
	mustFromHex("0xe7159475a2c29b7443b29c7fa6e889d9"),
	mustFromHex("0xd097f3bdfd2022b8845ad8f792aa5825"),
	mustFromHex("0xa9f746462d870fdf8a65dc1f90e061e5"),
	mustFromHex("0x70d869a156d2a1b890bb3df62baf32f7"),
	mustFromHex("0x31be135f97d08fd981231505542fcfa6"),
	mustFromHex("0x9aa508b5b7a84e1c677de54f3e99bc9"),
	mustFromHex("0x5d6af8dedb81196699c329225ee604"),
	mustFromHex("0x2216e584f5fa1ea926041bedfe98"),
	mustFromHex("0x48a170391f7dc42444e8fa2"),
}

func mustFromHex(s string) *uint256.Int {
	v, err := uint256.FromHex(s)
	if err != nil {
		panic(err)
	}
	return v
}

// bigLogSqrt10001Multiplier == 2**64 / log2(sqrt(1.0001)), split into a
// Q22.128 fixed point form.
var (
	bigLogSqrt10001Multiplier = mustBigFromDecimal("255738958999603826347141")
	bigTickLowMagic           = mustBigFromDecimal("3402992956809132418596140100660247210")
	bigTickHighMagic          = mustBigFromDecimal("291339464771989622907027621153398088495")
)

func mustBigFromDecimal(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad decimal constant: " + s)
	}
	return v
}

// GetSqrtPriceAtTick maps a logical tick to its Q64.96 sqrt price via
// binary exponentiation over the magic constant table.
func GetSqrtPriceAtTick(tick int32) (*uint256.Int, error) {
	if tick < MinTick || tick > MaxTick {
		return nil, ErrInvalidTick
	}

	absTick := tick
	if absTick < 0 {
		absTick = -absTick
	}

	ratio := new(uint256.Int)
	if absTick&0x1 != 0 {
		ratio.Set(tickMagic[0])
	} else {
		ratio.Lsh(uint256.NewInt(1), 128)
	}
	for i := 1; i < 20; i++ {
		if absTick&(1<<uint(i)) != 0 {
			ratio = new(uint256.Int).Rsh(new(uint256.Int).Mul(ratio, tickMagic[i]), 128)
		}
	}

	if tick > 0 {
		ratio = new(uint256.Int).Div(maxUint256, ratio)
	}

	// ratio is Q128.128; shift down to Q128.96, rounding up.
	shifted := new(uint256.Int).Rsh(ratio, 32)
	remainder := new(uint256.Int).And(ratio, uint256.NewInt((1<<32)-1))
	if !remainder.IsZero() {
		shifted = new(uint256.Int).AddUint64(shifted, 1)
	}
	return shifted, nil
}

// GetTickAtSqrtPrice maps a Q64.96 sqrt price back to the tick T such
// that GetSqrtPriceAtTick(T) <= sqrtPriceX96 < GetSqrtPriceAtTick(T+1),
// via a log2 bit-iteration procedure.
func GetTickAtSqrtPrice(sqrtPriceX96 *uint256.Int) (int32, error) {
	if sqrtPriceX96.Cmp(MinSqrtPrice) < 0 || sqrtPriceX96.Cmp(MaxSqrtPrice) >= 0 {
		return 0, ErrInvalidSqrtPrice
	}

	ratio := new(uint256.Int).Lsh(sqrtPriceX96, 32)

	msb := mostSignificantBit(ratio)

	var r *uint256.Int
	if msb >= 128 {
		r = new(uint256.Int).Rsh(ratio, uint(msb-127))
	} else {
		r = new(uint256.Int).Lsh(ratio, uint(127-msb))
	}

	log2 := new(big.Int).Lsh(big.NewInt(int64(msb)-128), 64)

	rBig := r.ToBig()
	one := big.NewInt(1)
	for shift := 63; shift >= 50; shift-- {
		// r = (r*r) >> 127
		rBig = new(big.Int).Rsh(new(big.Int).Mul(rBig, rBig), 127)
		f := new(big.Int).Rsh(rBig, 128) // 0 or 1
		if f.Cmp(one) >= 0 {
			log2 = new(big.Int).Or(log2, new(big.Int).Lsh(one, uint(shift)))
			rBig = new(big.Int).Rsh(rBig, 1)
		}
	}

	logSqrt10001 := new(big.Int).Mul(log2, bigLogSqrt10001Multiplier)

	tickLow := new(big.Int).Rsh(new(big.Int).Sub(logSqrt10001, bigTickLowMagic), 128)
	tickHigh := new(big.Int).Rsh(new(big.Int).Add(logSqrt10001, bigTickHighMagic), 128)

	low := int32(tickLow.Int64())
	high := int32(tickHigh.Int64())

	if low == high {
		return low, nil
	}
	sqrtAtHigh, err := GetSqrtPriceAtTick(high)
	if err != nil {
		return 0, err
	}
	if sqrtAtHigh.Cmp(sqrtPriceX96) <= 0 {
		return high, nil
	}
	return low, nil
}

// mostSignificantBit returns the 0-indexed position of x's highest set
// bit via binary search over 128/64/32/.../1-bit halves (the same
// technique bitmap.go uses for MSB/LSB over bitmap words).
func mostSignificantBit(x *uint256.Int) int {
	msb := 0
	check := func(bits int, bound *uint256.Int) {
		if x.Cmp(bound) > 0 {
			msb |= bits
			x = new(uint256.Int).Rsh(x, uint(bits))
		}
	}
	check(128, mustFromHex("0xffffffffffffffffffffffffffffffff"))
	check(64, uint256.NewInt(0xffffffffffffffff))
	check(32, uint256.NewInt(0xffffffff))
	check(16, uint256.NewInt(0xffff))
	check(8, uint256.NewInt(0xff))
	check(4, uint256.NewInt(0xf))
	check(2, uint256.NewInt(0x3))
	check(1, uint256.NewInt(0x1))
	return msb
}
