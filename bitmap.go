package poolcore

import "github.com/holiman/uint256"

// TickBitmap is a sparse word-indexed bitmap over compressed tick
// positions: bit (compressed % 256) of word (compressed / 256) is set
// iff the corresponding tick is initialized, where compressed = tick /
// tickSpacing.
type TickBitmap struct {
	words map[int16]*uint256.Int
}

// NewTickBitmap returns an empty bitmap.
func NewTickBitmap() *TickBitmap {
	return &TickBitmap{words: make(map[int16]*uint256.Int)}
}

// Clone deep-copies the bitmap.
func (b *TickBitmap) Clone() *TickBitmap {
	out := NewTickBitmap()
	for k, v := range b.words {
		out.words[k] = new(uint256.Int).Set(v)
	}
	return out
}

func compress(tick int32, spacing int32) (int32, error) {
	if tick%spacing != 0 {
		return 0, ErrTickMisaligned
	}
	return tick / spacing, nil
}

func position(compressed int32) (wordPos int16, bitPos uint8) {
	wordPos = int16(compressed >> 8)
	bitPos = uint8(uint32(compressed) & 0xff)
	return
}

func (b *TickBitmap) wordOrZero(wordPos int16) *uint256.Int {
	if w, ok := b.words[wordPos]; ok {
		return w
	}
	return new(uint256.Int)
}

// Flip toggles the bit for tick, requiring tick to be a multiple of
// spacing.
func (b *TickBitmap) Flip(tick, spacing int32) error {
	compressed, err := compress(tick, spacing)
	if err != nil {
		return err
	}
	wordPos, bitPos := position(compressed)
	mask := new(uint256.Int).Lsh(uint256.NewInt(1), uint(bitPos))
	word := b.wordOrZero(wordPos)
	word = new(uint256.Int).Xor(word, mask)
	if word.IsZero() {
		delete(b.words, wordPos)
	} else {
		b.words[wordPos] = word
	}
	return nil
}

// IsInitialized reports whether tick has its bit set.
func (b *TickBitmap) IsInitialized(tick, spacing int32) (bool, error) {
	compressed, err := compress(tick, spacing)
	if err != nil {
		return false, err
	}
	wordPos, bitPos := position(compressed)
	word := b.wordOrZero(wordPos)
	mask := new(uint256.Int).Lsh(uint256.NewInt(1), uint(bitPos))
	return !new(uint256.Int).And(word, mask).IsZero(), nil
}

// NextInitializedTickWithinOneWord finds the next initialized tick in
// the same or an adjacent word in the requested direction. lte=true
// searches at-or-below tick (towards -inf); lte=false searches
// strictly above (towards +inf). tick need not be a multiple of
// spacing: it is rounded down (towards -inf) to one, so err is always nil.
func (b *TickBitmap) NextInitializedTickWithinOneWord(tick, spacing int32, lte bool) (next int32, initialized bool, err error) {
	compressed := tick / spacing
	if tick < 0 && tick%spacing != 0 {
		compressed--
	}

	if lte {
		wordPos, bitPos := position(compressed)
		word := b.wordOrZero(wordPos)
		mask := new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), uint(bitPos)+1), uint256.NewInt(1))
		masked := new(uint256.Int).And(word, mask)
		if !masked.IsZero() {
			msb := mostSignificantBit(masked)
			return (int32(wordPos)*256 + int32(msb)) * spacing, true, nil
		}
		return (int32(wordPos)*256 + int32(bitPos)) * spacing, false, nil
	}

	compressed++
	wordPos, bitPos := position(compressed)
	word := b.wordOrZero(wordPos)
	mask := new(uint256.Int).Not(new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), uint(bitPos)), uint256.NewInt(1)))
	masked := new(uint256.Int).And(word, mask)
	if !masked.IsZero() {
		lsb := leastSignificantBit(masked)
		return (int32(wordPos)*256 + int32(lsb)) * spacing, true, nil
	}
	return (int32(wordPos) + 1) * 256 * spacing, false, nil
}

// leastSignificantBit returns the 0-indexed position of x's lowest set
// bit, via the same binary-search technique as mostSignificantBit
// applied from the opposite end.
func leastSignificantBit(x *uint256.Int) int {
	if x.IsZero() {
		return 0
	}
	lsb := 0
	check := func(bits int, mask *uint256.Int) {
		if new(uint256.Int).And(x, mask).IsZero() {
			lsb |= bits
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
	return lsb
}
