package dat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIntStackLIFO(t *testing.T) {
	s := newIntStack()
	require.True(t, s.empty())
	s.push(1)
	s.push(2)
	s.push(3)
	require.False(t, s.empty())
	require.Equal(t, 3, s.pop())
	require.Equal(t, 2, s.pop())
	require.Equal(t, 1, s.pop())
	require.True(t, s.empty())
}
