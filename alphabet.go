package dat

import "github.com/pkg/errors"

// AlphabetMap is the caller-supplied encode/decode capability between
// external key bytes and the internal symbol bytes the engine walks.
// The core does not define an alphabet; it trusts the encoder to emit
// only legal symbols and to append TermSymbol.
type AlphabetMap interface {
	// Encode returns a newly allocated byte string ending in
	// TermSymbol. It must map only bytes in the configured ranges and
	// produce identical output for inputs that must compare equal.
	Encode(key []byte) ([]byte, error)

	// Decode reverses Encode for diagnostics; it is never called on
	// the hot insert/find/delete path.
	Decode(symbols []byte) ([]byte, error)
}

// byteRange is an inclusive, closed interval of external byte values.
type byteRange struct {
	lo, hi byte
}

// ByteAlphabet is the reference AlphabetMap: external bytes are mapped
// 1:1 into symbol space shifted by one (so TermSymbol==0 never
// collides with a legal external byte), restricted to a configured set
// of disjoint ranges whose union must have cardinality <= 255.
type ByteAlphabet struct {
	ranges []byteRange
}

// NewByteAlphabet returns an alphabet with no ranges configured; call
// AddRange before using it to encode/decode.
func NewByteAlphabet() *ByteAlphabet {
	return &ByteAlphabet{}
}

// AddRange widens the alphabet to also accept every byte in [lo, hi].
// hi cannot be 0xff: Encode shifts every external byte up by one so
// that symbol 0 stays free for TermSymbol, and an external 0xff would
// wrap back around to symbol 0 instead of landing outside the legal
// symbol range. The alphabet's own budget of at most 255 distinct
// symbols already means not every one of the 256 possible byte values
// can be covered at once, so this is which byte has to give, not an
// extra restriction.
func (a *ByteAlphabet) AddRange(lo, hi byte) error {
	if hi == 0xff {
		return errors.New("dat: alphabet range cannot include 0xff, it would collide with the terminator symbol")
	}
	a.ranges = append(a.ranges, byteRange{lo: lo, hi: hi})
	return nil
}

func (a *ByteAlphabet) inRange(b byte) bool {
	for _, r := range a.ranges {
		if b >= r.lo && b <= r.hi {
			return true
		}
	}
	return false
}

// Encode maps each external byte to b+1 (so the smallest legal symbol
// is 1, reserving 0 for TermSymbol) and appends the terminator.
func (a *ByteAlphabet) Encode(key []byte) ([]byte, error) {
	out := make([]byte, 0, len(key)+1)
	for _, b := range key {
		if !a.inRange(b) {
			return nil, errors.Wrapf(ErrAlphaCharError, "byte %#x out of configured range", b)
		}
		out = append(out, b+1)
	}
	out = append(out, TermSymbol)
	return out, nil
}

// Decode reverses Encode, stopping at (and not including) the
// terminator if present.
func (a *ByteAlphabet) Decode(symbols []byte) ([]byte, error) {
	out := make([]byte, 0, len(symbols))
	for _, c := range symbols {
		if c == TermSymbol {
			break
		}
		out = append(out, c-1)
	}
	return out, nil
}
