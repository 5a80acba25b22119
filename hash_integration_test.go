package dat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newHashTestTrie() *Trie {
	a := NewByteAlphabet()
	a.AddRange(0x20, 0x7e)
	a.AddRange(hashFieldSeparator, hashFieldSeparator)
	return New(a, DefaultConfig())
}

// Exercises the THSET/THGETALL composition end to end: flat keys stored
// via ComposeHashKey are recovered by scanning HashKeyPrefix and
// splitting each result with SplitHashField.
func TestHashFieldsScanViaPrefixSearch(t *testing.T) {
	tr := newHashTestTrie()
	key := []byte("user:1")
	fields := map[string]string{"name": "ada", "role": "admin"}
	for field, val := range fields {
		_, err := tr.Insert(ComposeHashKey(key, []byte(field)), val)
		require.NoError(t, err)
	}
	// An unrelated key sharing the same literal prefix must not leak in.
	_, err := tr.Insert([]byte("user:10"), "decoy")
	require.NoError(t, err)

	it, err := tr.PrefixSearch(HashKeyPrefix(key))
	require.NoError(t, err)

	got := make(map[string]string)
	for {
		flatKey, val, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		field, ok := SplitHashField(key, flatKey)
		require.True(t, ok)
		got[string(field)] = val.(string)
	}
	require.Equal(t, fields, got)
}

func TestHashFieldDeleteLeavesOthersIntact(t *testing.T) {
	tr := newHashTestTrie()
	key := []byte("user:1")
	require.NoError(t, insertHashField(tr, key, "name", "ada"))
	require.NoError(t, insertHashField(tr, key, "role", "admin"))

	require.NoError(t, tr.Delete(ComposeHashKey(key, []byte("role"))))

	_, ok, err := tr.Find(ComposeHashKey(key, []byte("role")))
	require.NoError(t, err)
	require.False(t, ok)

	val, ok, err := tr.Find(ComposeHashKey(key, []byte("name")))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "ada", val)
}

func insertHashField(tr *Trie, key []byte, field, val string) error {
	_, err := tr.Insert(ComposeHashKey(key, []byte(field)), val)
	return err
}
