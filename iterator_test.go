package dat

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func collectAll(t *testing.T, it *TrieIterator) map[string]interface{} {
	t.Helper()
	got := make(map[string]interface{})
	for {
		key, val, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got[string(key)] = val
	}
	return got
}

func TestPrefixSearchReturnsSubtree(t *testing.T) {
	tr := newTestTrie()
	for _, k := range []string{"pool", "pound", "prize", "preview", "quota"} {
		_, err := tr.Insert([]byte(k), k)
		require.NoError(t, err)
	}

	it, err := tr.PrefixSearch([]byte("p"))
	require.NoError(t, err)
	got := collectAll(t, it)
	require.Equal(t, map[string]interface{}{
		"pool": "pool", "pound": "pound", "prize": "prize", "preview": "preview",
	}, got)
}

func TestPrefixSearchIncludesExactKeyAndLongerKeys(t *testing.T) {
	tr := newTestTrie()
	for _, k := range []string{"pre", "prefix"} {
		_, err := tr.Insert([]byte(k), k)
		require.NoError(t, err)
	}
	it, err := tr.PrefixSearch([]byte("pre"))
	require.NoError(t, err)
	got := collectAll(t, it)
	require.Equal(t, map[string]interface{}{"pre": "pre", "prefix": "prefix"}, got)
}

func TestPrefixSearchNoMatchIsEmpty(t *testing.T) {
	tr := newTestTrie()
	_, err := tr.Insert([]byte("pool"), 1)
	require.NoError(t, err)
	it, err := tr.PrefixSearch([]byte("zzz"))
	require.NoError(t, err)
	require.Equal(t, 0, it.Remaining())
}

func TestPrefixSearchMidTailPartialMatch(t *testing.T) {
	tr := newTestTrie()
	_, err := tr.Insert([]byte("hello"), "world")
	require.NoError(t, err)

	it, err := tr.PrefixSearch([]byte("hel"))
	require.NoError(t, err)
	got := collectAll(t, it)
	require.Equal(t, map[string]interface{}{"hello": "world"}, got)

	it2, err := tr.PrefixSearch([]byte("help"))
	require.NoError(t, err)
	require.Equal(t, 0, it2.Remaining())
}

func TestKeysMatchingWildcardStar(t *testing.T) {
	tr := newTestTrie()
	for _, k := range []string{"a", "ab", "abc", "b"} {
		_, err := tr.Insert([]byte(k), k)
		require.NoError(t, err)
	}
	it, err := tr.KeysMatching([]byte("*"))
	require.NoError(t, err)
	got := collectAll(t, it)
	require.Len(t, got, 4)

	it2, err := tr.KeysMatching([]byte("ab*"))
	require.NoError(t, err)
	got2 := collectAll(t, it2)
	require.Equal(t, map[string]interface{}{"ab": "ab", "abc": "abc"}, got2)
}

func TestIteratorOrderIsAscendingBySymbol(t *testing.T) {
	tr := newTestTrie()
	words := []string{"b", "a", "d", "c"}
	for _, k := range words {
		_, err := tr.Insert([]byte(k), k)
		require.NoError(t, err)
	}
	it, err := tr.PrefixSearch(nil)
	require.NoError(t, err)
	var order []string
	for {
		key, _, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		order = append(order, string(key))
	}
	want := append([]string(nil), words...)
	sort.Strings(want)
	require.Equal(t, want, order)
}

func TestIteratorGoesStaleOnMutation(t *testing.T) {
	tr := newTestTrie()
	_, err := tr.Insert([]byte("pool"), 1)
	require.NoError(t, err)
	_, err = tr.Insert([]byte("prize"), 2)
	require.NoError(t, err)

	it, err := tr.PrefixSearch([]byte("p"))
	require.NoError(t, err)

	_, err = tr.Insert([]byte("pound"), 3)
	require.NoError(t, err)

	_, _, _, err = it.Next()
	require.ErrorIs(t, err, ErrIteratorStale)
}
