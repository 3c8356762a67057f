package sigtimer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GoogleCloudPlatform/cloud-profiler-go/internal/testhost"
	"github.com/GoogleCloudPlatform/cloud-profiler-go/pkg/atomicbitops"
	"github.com/GoogleCloudPlatform/cloud-profiler-go/pkg/multiset"
	"github.com/GoogleCloudPlatform/cloud-profiler-go/pkg/trace"
)

// TestHandlerNoHostStateProducesSingleSentinelFrame mirrors §8: "a
// handler firing on a thread with null host state produces exactly one
// frame with line = NO_HOST_STATE".
func TestHandlerNoHostStateProducesSingleSentinelFrame(t *testing.T) {
	host := testhost.New()
	host.ClearThreadState()

	asm := &multiset.ASM{}
	var unknown atomicbitops.Int64
	h := NewHandler(host, asm, &unknown)
	h()

	found := false
	for i := 0; i < multiset.NumSlots(); i++ {
		tr, count, ok := asm.Extract(i)
		if !ok {
			continue
		}
		found = true
		require.Len(t, tr, 1)
		require.Equal(t, trace.NoHostState, tr[0].Line)
		require.Equal(t, int64(1), count)
	}
	require.True(t, found)
	require.Equal(t, int64(0), unknown.Load())
}

func TestHandlerWalksFrameChain(t *testing.T) {
	host := testhost.New()
	host.SetThreadState(
		struct {
			Code trace.CodeID
			Line int32
		}{Code: 7, Line: 100},
		struct {
			Code trace.CodeID
			Line int32
		}{Code: 8, Line: 200},
	)

	asm := &multiset.ASM{}
	var unknown atomicbitops.Int64
	h := NewHandler(host, asm, &unknown)
	h()

	var got trace.CallTrace
	for i := 0; i < multiset.NumSlots(); i++ {
		tr, _, ok := asm.Extract(i)
		if ok {
			got = tr
		}
	}
	require.Equal(t, trace.CallTrace{{Code: 7, Line: 100}, {Code: 8, Line: 200}}, got)
}

func TestHandlerIncrementsUnknownOnTableFull(t *testing.T) {
	host := testhost.New()
	host.SetThreadState(struct {
		Code trace.CodeID
		Line int32
	}{Code: 1, Line: 1})

	asm := &multiset.ASM{}
	var unknown atomicbitops.Int64
	h := NewHandler(host, asm, &unknown)

	// Fill every slot with distinct traces so the handler's trace has
	// nowhere to land.
	for i := 0; i < multiset.NumSlots(); i++ {
		require.True(t, asm.Add(trace.CallTrace{{Code: trace.CodeID(1000 + i), Line: 1}}))
	}

	h()
	require.Equal(t, int64(1), unknown.Load())
}
