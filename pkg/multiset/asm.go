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

// Package multiset implements the fixed-capacity, async-signal-safe
// trace multiset (Component C), the growable trace multiset it drains
// into (Component D), and the harvest that moves entries between them
// (Component E).
package multiset

import (
	"github.com/GoogleCloudPlatform/cloud-profiler-go/pkg/atomicbitops"
	"github.com/GoogleCloudPlatform/cloud-profiler-go/pkg/trace"
)

const (
	// numSlots is the ASM's fixed capacity (§3: N=2048).
	numSlots = 2048

	// locked is the sentinel count meaning "in transition; do not read
	// the frame buffer" (§3, GLOSSARY).
	locked = -1
)

// slot holds one entry of the ASM: a fixed frame buffer, its length, and
// the two atomics that make concurrent add/extract safe without a lock.
type slot struct {
	frames        [trace.MaxFrames]trace.Frame
	numFrames     int
	count         atomicbitops.Int64
	activeUpdates atomicbitops.Uint32
}

// ASM is the fixed-capacity, open-addressed multiset of call traces
// populated from signal context (§3, §4.C). Its zero value is ready to
// use; it is never freed once constructed, because a signal handler may
// still be writing to it after its owning session believes it is done
// (§9).
type ASM struct {
	slots [numSlots]slot
}

// globalASM is the process-lifetime singleton referenced from the signal
// handler (§3 Ownership, §9 "cyclic reference between handler and
// storage"). It is published once and only ever read from the handler
// thereafter — no republication, no teardown.
var globalASM = &ASM{}

// GlobalASM returns the process-lifetime ASM singleton.
func GlobalASM() *ASM { return globalASM }

// Add inserts trace t, incrementing its count if already present. It
// returns false if the table is full or every probe slot was contended
// out of N attempts.
//
// Add performs no allocation, no locking beyond the lock-free atomics
// below, and no system calls: it is safe to call from an asynchronous
// signal handler (§4.C contract). Add does not keep t: it copies frame
// data field-by-field into the slot, so the caller may reuse t's backing
// array (e.g. a stack buffer) as soon as Add returns. The field-by-field
// copy matches the spec's "no memcpy" requirement for an async-signal
// context where memcpy is not guaranteed reentrant on all platforms.
func (a *ASM) Add(t trace.CallTrace) bool {
	if len(t) == 0 || len(t) > trace.MaxFrames {
		return false
	}
	h := t.Hash()
	for j := uint64(0); j < numSlots; j++ {
		i := (h + j) % numSlots
		s := &a.slots[i]

		s.activeUpdates.Add(1)
		c := s.count.Load()

		switch {
		case c == 0:
			if s.count.CompareAndSwap(0, locked) {
				s.activeUpdates.Dec()
				for k, f := range t {
					s.frames[k] = f
				}
				s.numFrames = len(t)
				s.count.Store(1)
				return true
			}
			s.activeUpdates.Dec()

		case c == locked:
			s.activeUpdates.Dec()

		default: // c > 0: a published entry; check for a match.
			if sameTrace(s, t) {
				c = s.count.Load()
				if c > 0 && s.count.CompareAndSwap(c, c+1) {
					s.activeUpdates.Dec()
					return true
				}
			}
			s.activeUpdates.Dec()
		}
	}
	return false
}

// sameTrace reports whether slot s currently holds exactly trace t. It
// is called while s.activeUpdates has already been incremented by the
// caller, so the frame buffer cannot be reclaimed by a concurrent
// Extract while this read happens.
func sameTrace(s *slot, t trace.CallTrace) bool {
	if s.numFrames != len(t) {
		return false
	}
	for i := 0; i < s.numFrames; i++ {
		if s.frames[i] != t[i] {
			return false
		}
	}
	return true
}

// Extract drains slot i if it currently holds a published entry,
// returning the trace and its accumulated count. At most one goroutine
// ever calls Extract concurrently with Add; Extract itself is not safe
// to call from more than one goroutine at a time (§4.C "single
// drainer").
func (a *ASM) Extract(i int) (t trace.CallTrace, count int64, ok bool) {
	s := &a.slots[i]

	c := s.count.Load()
	if c <= 0 {
		return nil, 0, false
	}

	prev := s.count.Swap(locked)
	if prev <= 0 {
		// Lost a race with a concurrent drainer's own Extract on this
		// slot; contract promises a single drainer, so this should not
		// happen, but fail safe rather than double-count.
		s.count.Store(prev)
		return nil, 0, false
	}

	frames := make(trace.CallTrace, s.numFrames)
	copy(frames, s.frames[:s.numFrames])

	// Spin until no writer is still inspecting this slot's frame buffer.
	// Unbounded by design (§4.C step 4, §9 open question): writers'
	// critical sections are constant-size field copies, so in practice
	// this resolves in microseconds.
	for s.activeUpdates.Load() != 0 {
	}

	s.count.Store(0)
	return frames, prev, true
}

// NumSlots reports the ASM's fixed capacity.
func NumSlots() int { return numSlots }

// reset clears every slot. Only safe to call when no sampling is in
// flight (i.e. before a session arms the timer) — unlike Add/Extract,
// reset is not part of the async-signal-safe contract.
func (a *ASM) reset() {
	for i := range a.slots {
		a.slots[i].count.Store(0)
		a.slots[i].activeUpdates.Store(0)
		a.slots[i].numFrames = 0
	}
}

// Reset clears the global ASM singleton between sessions (§4.H step 1).
func Reset() { globalASM.reset() }
