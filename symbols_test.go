package dat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSymbolsAddKeepsSortedUnique(t *testing.T) {
	s := NewSymbols()
	s.Add('c')
	s.Add('a')
	s.Add('b')
	s.Add('a') // duplicate, no-op
	require.Equal(t, []byte{'a', 'b', 'c'}, s.Slice())
	require.Equal(t, 3, s.Num())
}

func TestSymbolsGet(t *testing.T) {
	s := NewSymbols()
	for _, c := range []byte{5, 1, 9, 3} {
		s.Add(c)
	}
	want := []byte{1, 3, 5, 9}
	for i, c := range want {
		require.Equal(t, c, s.Get(i))
	}
}

func TestSymbolsAppendUnchecked(t *testing.T) {
	s := NewSymbols()
	s.AppendUnchecked(1)
	s.AppendUnchecked(2)
	s.AppendUnchecked(3)
	require.Equal(t, []byte{1, 2, 3}, s.Slice())
}
