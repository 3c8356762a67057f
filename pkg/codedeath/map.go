// Copyright 2026 The Cloud Profiler Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package codedeath implements the code-record death hook (Component F):
// it snapshots (name, filename) for every host code record the moment
// before the host destroys it, keyed by the record's address, so a
// sample captured just before destruction can still be resolved.
package codedeath

import (
	"sync"

	"github.com/GoogleCloudPlatform/cloud-profiler-go/pkg/hostabi"
	"github.com/GoogleCloudPlatform/cloud-profiler-go/pkg/trace"
)

// Map is the CodeDeathMap (§3): CodeID -> FuncLoc, populated from the
// host's code-destruction hook. Its lifetime equals one session.
//
// Access is serialized by the host's global lock, which both the
// destructor wrapper and Resolve's callers (materialization) hold while
// touching it (§3, §5). Map also takes its own mutex in every method, so
// it stays safe if a caller forgets that discipline; in the steady-state
// path that mutex is uncontended.
type Map struct {
	mu      sync.Mutex
	entries map[trace.CodeID]trace.FuncLoc

	installed bool
	uninstall func()
}

// global is the process-lifetime CodeDeathMap singleton (§3 Ownership):
// never freed, because samples from a prior session's signal handler
// could still be arriving during teardown.
var global = &Map{entries: make(map[trace.CodeID]trace.FuncLoc)}

// Global returns the process-lifetime CodeDeathMap singleton.
func Global() *Map { return global }

// Install replaces host's destructor for code records with a wrapper
// that records (name, filename) before delegating to the original.
// Must be called while the host's global lock is held. Idempotent per
// session: calling Install while already installed is a no-op.
func (m *Map) Install(host hostabi.Host) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.installed {
		return
	}
	m.uninstall = host.InstallDestructorHook(func(rec hostabi.CodeRecord) {
		m.record(rec.ID(), trace.FuncLoc{Name: rec.Name(), Filename: rec.Filename()})
	})
	m.installed = true
}

// record inserts id -> loc. Split out from the hook closure so tests can
// drive it without a real hostabi.Host.
func (m *Map) record(id trace.CodeID, loc trace.FuncLoc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Known imperfection (§4.F, §9): if two different code records
	// occupy the same address within one session, this overwrites the
	// first's entry with the second's. Not fixed here.
	m.entries[id] = loc
}

// Resolve looks up id, returning ok=false on a miss.
func (m *Map) Resolve(id trace.CodeID) (trace.FuncLoc, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	loc, ok := m.entries[id]
	return loc, ok
}

// Uninstall restores the original destructor. Must be called under the
// host lock, on every exit path of the session that called Install.
func (m *Map) Uninstall() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.installed {
		return
	}
	if m.uninstall != nil {
		m.uninstall()
	}
	m.uninstall = nil
	m.installed = false
}

// Reset clears the map between sessions.
func (m *Map) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[trace.CodeID]trace.FuncLoc)
}
