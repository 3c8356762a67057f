package atomicbitops

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInt64LockedSentinel(t *testing.T) {
	var v Int64
	require.True(t, v.CompareAndSwap(0, -1))
	require.Equal(t, int64(-1), v.Load())
	require.True(t, v.CompareAndSwap(-1, 1))
	require.Equal(t, int64(1), v.Load())
}

func TestUint32Dec(t *testing.T) {
	var v Uint32
	v.Add(3)
	require.Equal(t, uint32(2), v.Dec())
	require.Equal(t, uint32(1), v.Dec())
}
