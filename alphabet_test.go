package dat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func asciiAlphabet() *ByteAlphabet {
	a := NewByteAlphabet()
	a.AddRange('a', 'z')
	a.AddRange('0', '9')
	return a
}

func TestByteAlphabetEncodeAppendsTerminator(t *testing.T) {
	a := asciiAlphabet()
	enc, err := a.Encode([]byte("cat9"))
	require.NoError(t, err)
	require.Equal(t, TermSymbol, int(enc[len(enc)-1]))
	require.Len(t, enc, len("cat9")+1)
}

func TestByteAlphabetRoundTrip(t *testing.T) {
	a := asciiAlphabet()
	for _, word := range []string{"a", "zoo42", "biscuit9"} {
		enc, err := a.Encode([]byte(word))
		require.NoError(t, err)
		dec, err := a.Decode(enc)
		require.NoError(t, err)
		require.Equal(t, word, string(dec))
	}
}

func TestByteAlphabetRejectsOutOfRange(t *testing.T) {
	a := asciiAlphabet()
	_, err := a.Encode([]byte("CAT"))
	require.ErrorIs(t, err, ErrAlphaCharError)
}

func TestByteAlphabetDecodeStopsAtTerminator(t *testing.T) {
	a := asciiAlphabet()
	dec, err := a.Decode([]byte{'a' + 1, 'b' + 1, TermSymbol, 'c' + 1})
	require.NoError(t, err)
	require.Equal(t, "ab", string(dec))
}

func TestByteAlphabetAddRangeRejects0xff(t *testing.T) {
	a := NewByteAlphabet()
	err := a.AddRange(0xf0, 0xff)
	require.Error(t, err)
}

func TestByteAlphabetAddRangeAllowsUpTo0xfe(t *testing.T) {
	a := NewByteAlphabet()
	require.NoError(t, a.AddRange(0xf0, 0xfe))
	enc, err := a.Encode([]byte{0xfe})
	require.NoError(t, err)
	require.NotEqual(t, TermSymbol, int(enc[0]))
}
