package trace

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEqualOrderSensitive(t *testing.T) {
	a := CallTrace{{Code: 1, Line: 10}, {Code: 2, Line: 20}}
	b := CallTrace{{Code: 2, Line: 20}, {Code: 1, Line: 10}}
	require.False(t, a.Equal(b))
	require.True(t, a.Equal(a.Clone()))
}

func TestHashAgreesWithEqual(t *testing.T) {
	a := CallTrace{{Code: 1, Line: 10}, {Code: 2, Line: 20}}
	b := a.Clone()
	require.Equal(t, a.Hash(), b.Hash())
	require.Equal(t, a.Key(), b.Key())

	c := CallTrace{{Code: 1, Line: 11}, {Code: 2, Line: 20}}
	require.False(t, a.Equal(c))
	// Not required to differ, but for this input it must not collide on Key.
	require.NotEqual(t, a.Key(), c.Key())
}

func TestKeyDistinguishesLengths(t *testing.T) {
	a := CallTrace{{Code: 1, Line: 1}}
	b := CallTrace{{Code: 1, Line: 1}, {Code: 0, Line: 0}}
	require.NotEqual(t, a.Key(), b.Key())
}

// TestHashAllocatesNothing guards the no-allocation contract Hash must
// hold: it is called from ASM.Add on the profiling signal's handler path
// (§4.C), which may not allocate.
func TestHashAllocatesNothing(t *testing.T) {
	tr := CallTrace{{Code: 1, Line: 10}, {Code: 2, Line: 20}, {Code: 3, Line: 30}}
	allocs := testing.AllocsPerRun(100, func() {
		_ = tr.Hash()
	})
	require.Equal(t, float64(0), allocs)
}
