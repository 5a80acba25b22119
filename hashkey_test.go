package dat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComposeHashKeyAndSplit(t *testing.T) {
	flat := ComposeHashKey([]byte("user:1"), []byte("name"))
	require.Equal(t, append(append([]byte("user:1"), hashFieldSeparator), []byte("name")...), flat)

	field, ok := SplitHashField([]byte("user:1"), flat)
	require.True(t, ok)
	require.Equal(t, "name", string(field))
}

func TestSplitHashFieldRejectsOtherKeys(t *testing.T) {
	flat := ComposeHashKey([]byte("user:1"), []byte("name"))
	_, ok := SplitHashField([]byte("user:2"), flat)
	require.False(t, ok)
}

func TestHashKeyPrefixMatchesComposedKeys(t *testing.T) {
	prefix := HashKeyPrefix([]byte("user:1"))
	flat := ComposeHashKey([]byte("user:1"), []byte("name"))
	require.True(t, len(flat) >= len(prefix))
	require.Equal(t, prefix, flat[:len(prefix)])
}
