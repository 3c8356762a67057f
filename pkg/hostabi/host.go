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

// Package hostabi describes the host-runtime contract (§6): the managed
// runtime this profiler core is embedded in. The core never talks to a
// concrete host directly — it is built against this interface so it can
// be tested with a fake, and so swapping the embedding runtime (CPython,
// a JVM, etc.) never touches pkg/multiset, pkg/codedeath, or
// pkg/sigtimer.
package hostabi

import "github.com/GoogleCloudPlatform/cloud-profiler-go/pkg/trace"

// FrameChain is the host's linked stack, walkable by reading fields only
// — no reference-count mutation, so it is safe to walk from the
// profiling signal's handler body (§4.G step 4, GLOSSARY).
type FrameChain interface {
	// Next returns the next (code, line) pair walking from the innermost
	// executing frame outward, and reports whether one was available.
	Next() (code trace.CodeID, line int32, ok bool)
}

// State is a snapshot of "the current thread's host state" (§6).
type State interface {
	// Frames returns the frame chain for this state. Called from the
	// handler body; must not allocate or block.
	Frames() FrameChain
}

// CodeRecord is a host code record about to be destroyed (§4.F).
type CodeRecord interface {
	ID() trace.CodeID
	Name() string
	Filename() string
}

// Host is the full host-runtime contract (§6).
type Host interface {
	// Lock acquires the host's global serialization lock.
	Lock()
	// Unlock releases it.
	Unlock()

	// CurrentState returns the calling thread's host state, or ok=false
	// if the calling thread has none (§4.G step 3, NoHostState).
	// Reachable from any thread, including one handling the profiling
	// signal.
	CurrentState() (state State, ok bool)

	// ResolveLive resolves a CodeID via a live query against the host's
	// still-resident record, used as materialization's resolution
	// fallback when CDH has no entry (§4.H step 9).
	ResolveLive(id trace.CodeID) (funcLoc trace.FuncLoc, ok bool)

	// InstallDestructorHook replaces the host's code-record destructor
	// with a wrapper that invokes onDestroy for every record about to be
	// freed, before delegating to the original destructor. Must be
	// called with Lock held (§4.F contract). The returned func restores
	// the original destructor and must also be called with Lock held.
	InstallDestructorHook(onDestroy func(CodeRecord)) (uninstall func())
}
