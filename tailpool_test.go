package dat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestTailPool(t *testing.T) *tailPool {
	t.Helper()
	return newTailPool(func() bool { return true }, nil, nil, nil)
}

func TestTailPoolAllocSetSuffixGet(t *testing.T) {
	p := newTestTailPool(t)
	addr, err := p.alloc()
	require.NoError(t, err)
	p.setSuffix(addr, []byte("suffix"))
	entry := p.get(addr)
	require.NotNil(t, entry)
	require.Equal(t, "suffix", string(entry.Suffix()))
	require.Equal(t, 1, p.used)
}

func TestTailPoolFreeRunsDestructors(t *testing.T) {
	var destroyedKeys [][]byte
	var destroyedVals []interface{}
	p := newTailPool(func() bool { return true },
		func(k []byte) { destroyedKeys = append(destroyedKeys, k) },
		func(v interface{}) { destroyedVals = append(destroyedVals, v) },
		nil)

	addr, err := p.alloc()
	require.NoError(t, err)
	entry := p.get(addr)
	entry.key = []byte("k1")
	entry.val = "v1"

	require.NoError(t, p.free(addr))
	require.Equal(t, [][]byte{[]byte("k1")}, destroyedKeys)
	require.Equal(t, []interface{}{"v1"}, destroyedVals)
	require.Equal(t, 0, p.used)
	require.Nil(t, p.get(addr))
}

func TestTailPoolDoubleFreeErrors(t *testing.T) {
	p := newTestTailPool(t)
	addr, err := p.alloc()
	require.NoError(t, err)
	require.NoError(t, p.free(addr))
	require.ErrorIs(t, p.free(addr), ErrInvalidEntry)
}

func TestTailPoolFreeListAscendingReuse(t *testing.T) {
	p := newTestTailPool(t)
	a1, err := p.alloc()
	require.NoError(t, err)
	a2, err := p.alloc()
	require.NoError(t, err)
	a3, err := p.alloc()
	require.NoError(t, err)

	require.NoError(t, p.free(a2))
	require.NoError(t, p.free(a1))
	require.NoError(t, p.free(a3))

	// Reallocation must hand back the smallest freed block first.
	reused, err := p.alloc()
	require.NoError(t, err)
	require.Equal(t, a1, reused)
}

func TestTailPoolGrowsAcrossPowerOfTwoBoundary(t *testing.T) {
	p := newTestTailPool(t)
	addrs := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		addr, err := p.alloc()
		require.NoError(t, err)
		addrs = append(addrs, addr)
	}
	require.True(t, len(p.entries) >= 5)
	require.Equal(t, 5, p.used)
}

func TestTailPoolWalkTailStopsAtTerminator(t *testing.T) {
	p := newTestTailPool(t)
	addr, err := p.alloc()
	require.NoError(t, err)
	p.setSuffix(addr, []byte{'x', 'y', TermSymbol})

	idx := 0
	require.True(t, p.walkTail(addr, &idx, int('x')))
	require.Equal(t, 1, idx)
	require.True(t, p.walkTail(addr, &idx, int('y')))
	require.Equal(t, 2, idx)
	require.True(t, p.walkTail(addr, &idx, TermSymbol))
	require.Equal(t, 2, idx) // terminator does not advance the index
	require.False(t, p.walkTail(addr, &idx, int('z')))
}
