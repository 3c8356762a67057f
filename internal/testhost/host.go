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

// Package testhost is a fake hostabi.Host used by every package's tests,
// simulating a managed-runtime host without depending on one.
package testhost

import (
	"sync"

	"github.com/GoogleCloudPlatform/cloud-profiler-go/pkg/hostabi"
	"github.com/GoogleCloudPlatform/cloud-profiler-go/pkg/trace"
)

// Record is a fake code record: a stable ID plus the name/filename a
// live query or the death hook would report for it.
type Record struct {
	id       trace.CodeID
	name     string
	filename string
}

func (r *Record) ID() trace.CodeID  { return r.id }
func (r *Record) Name() string      { return r.name }
func (r *Record) Filename() string  { return r.filename }

// chain is a fake FrameChain over a fixed slice of (code, line) pairs.
type chain struct {
	frames []frame
	pos    int
}

type frame struct {
	code trace.CodeID
	line int32
}

func (c *chain) Next() (trace.CodeID, int32, bool) {
	if c.pos >= len(c.frames) {
		return 0, 0, false
	}
	f := c.frames[c.pos]
	c.pos++
	return f.code, f.line, true
}

// state is a fake hostabi.State.
type state struct {
	frames []frame
}

func (s *state) Frames() hostabi.FrameChain { return &chain{frames: s.frames} }

// Host is a fake hostabi.Host: threads either have no state (simulating
// NoHostState, §4.G step 3) or a fixed, settable frame chain.
type Host struct {
	mu sync.Mutex

	lock sync.Mutex // the simulated "host global lock" (§6)

	live map[trace.CodeID]trace.FuncLoc

	onDestroy func(hostabi.CodeRecord)

	// defaultState lets a test pin a state via SetThreadState/
	// ClearThreadState, simulating "the current thread's host state". It
	// is one state shared by every caller, not a per-goroutine one.
	defaultState *state
}

// New returns an empty fake host: no live records, no current state.
func New() *Host {
	return &Host{live: make(map[trace.CodeID]trace.FuncLoc)}
}

func (h *Host) Lock()   { h.lock.Lock() }
func (h *Host) Unlock() { h.lock.Unlock() }

// SetThreadState arms the host so that CurrentState returns a state
// whose frame chain walks the given (code, line) pairs, innermost first.
func (h *Host) SetThreadState(codeLines ...struct {
	Code trace.CodeID
	Line int32
}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fs := make([]frame, len(codeLines))
	for i, cl := range codeLines {
		fs[i] = frame{code: cl.Code, line: cl.Line}
	}
	h.defaultState = &state{frames: fs}
}

// ClearThreadState simulates a thread with no host state (NoHostState).
func (h *Host) ClearThreadState() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.defaultState = nil
}

func (h *Host) CurrentState() (hostabi.State, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.defaultState == nil {
		return nil, false
	}
	return h.defaultState, true
}

// DefineRecord registers a live, resolvable code record.
func (h *Host) DefineRecord(id trace.CodeID, name, filename string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.live[id] = trace.FuncLoc{Name: name, Filename: filename}
}

func (h *Host) ResolveLive(id trace.CodeID) (trace.FuncLoc, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	loc, ok := h.live[id]
	return loc, ok
}

// Free simulates the host destroying a code record: it fires the
// installed destructor hook (if any) before removing the live entry,
// matching §4.F's "read before delegating" ordering.
func (h *Host) Free(id trace.CodeID) {
	h.mu.Lock()
	loc, ok := h.live[id]
	hook := h.onDestroy
	h.mu.Unlock()
	if ok && hook != nil {
		hook(&Record{id: id, name: loc.Name, filename: loc.Filename})
	}
	h.mu.Lock()
	delete(h.live, id)
	h.mu.Unlock()
}

func (h *Host) InstallDestructorHook(onDestroy func(hostabi.CodeRecord)) (uninstall func()) {
	h.mu.Lock()
	h.onDestroy = onDestroy
	h.mu.Unlock()
	return func() {
		h.mu.Lock()
		h.onDestroy = nil
		h.mu.Unlock()
	}
}
