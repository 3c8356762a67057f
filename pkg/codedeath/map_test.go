package codedeath

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GoogleCloudPlatform/cloud-profiler-go/internal/testhost"
	"github.com/GoogleCloudPlatform/cloud-profiler-go/pkg/trace"
)

// TestResolveAfterFree mirrors the CDH half of §8 scenario 2: install
// CDH, free code C, then resolve C from the map.
func TestResolveAfterFree(t *testing.T) {
	m := &Map{entries: make(map[trace.CodeID]trace.FuncLoc)}
	host := testhost.New()
	host.DefineRecord(42, "f", "f.py")

	host.Lock()
	m.Install(host)
	host.Unlock()

	host.Free(42)

	loc, ok := m.Resolve(42)
	require.True(t, ok)
	require.Equal(t, "f", loc.Name)
	require.Equal(t, "f.py", loc.Filename)
}

func TestResolveMissReturnsFalse(t *testing.T) {
	m := &Map{entries: make(map[trace.CodeID]trace.FuncLoc)}
	_, ok := m.Resolve(999)
	require.False(t, ok)
}

func TestInstallIdempotent(t *testing.T) {
	m := &Map{entries: make(map[trace.CodeID]trace.FuncLoc)}
	host := testhost.New()
	m.Install(host)
	first := m.uninstall
	m.Install(host)
	require.NotNil(t, m.uninstall)
	_ = first
}

func TestUninstallStopsRecording(t *testing.T) {
	m := &Map{entries: make(map[trace.CodeID]trace.FuncLoc)}
	host := testhost.New()
	host.DefineRecord(1, "a", "a.py")

	m.Install(host)
	m.Uninstall()

	host.Free(1)
	_, ok := m.Resolve(1)
	require.False(t, ok, "destructor hook must not fire after Uninstall")
}

func TestReset(t *testing.T) {
	m := &Map{entries: make(map[trace.CodeID]trace.FuncLoc)}
	m.record(1, trace.FuncLoc{Name: "a"})
	m.Reset()
	_, ok := m.Resolve(1)
	require.False(t, ok)
}

func TestAddressReuseShadowing(t *testing.T) {
	// Documented known imperfection (§4.F, §9): a second record at a
	// reused address overwrites the first's entry.
	m := &Map{entries: make(map[trace.CodeID]trace.FuncLoc)}
	m.record(1, trace.FuncLoc{Name: "first", Filename: "a.py"})
	m.record(1, trace.FuncLoc{Name: "second", Filename: "b.py"})

	loc, ok := m.Resolve(1)
	require.True(t, ok)
	require.Equal(t, "second", loc.Name)
}
