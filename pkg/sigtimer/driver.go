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

// Package sigtimer installs the profiling signal's handler and drives
// the CPU-time interval timer that delivers it (Component G), plus the
// fork-safety discipline around that signal.
//
// Go gives user code no way to install a true SA_SIGINFO handler that
// runs synchronously on the interrupted thread without cgo; os/signal
// instead forwards delivery to a dedicated goroutine via a channel. This
// package builds on that: it treats the function passed to SetAction as
// the handler body of §4.G, dispatched from the forwarding goroutine, and
// keeps that body to the same discipline (no allocation, no blocking
// calls, no locking beyond pkg/multiset's atomics) the spec requires of a
// real signal handler, so the one piece of genuine OS-signal-handler
// semantics this module cannot reproduce — "runs on the interrupted
// thread's own stack" — is the only thing that differs from the letter
// of §4.G. Tests exercise the handler body directly via Fire, the way a
// raw signal delivery would, without depending on OS signal timing.
package sigtimer

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// HandlerFunc is the profiling signal's handler body (§4.G). It must be
// safe to call from an async-signal-safe context: no allocation, no
// locking other than pkg/multiset's atomics, no non-reentrant calls.
type HandlerFunc func()

// ProfilingSignal is the OS signal used to deliver interval-timer
// expirations, scheduled against consumed CPU time (GLOSSARY).
const ProfilingSignal = unix.SIGPROF

// Driver owns the profiling signal's disposition and the interval timer
// for the lifetime of one session (§5: "process-wide... the session owns
// them exclusively").
type Driver struct {
	handler atomic.Value // HandlerFunc

	mu      sync.Mutex
	sigCh   chan os.Signal
	stopCh  chan struct{}
	running bool
}

// NewDriver returns an unarmed driver.
func NewDriver() *Driver {
	return &Driver{}
}

// SetAction installs fn as the handler for the profiling signal (§4.G
// set_action). It is idempotent: calling it again replaces the handler
// without restarting the dispatch goroutine.
func (d *Driver) SetAction(fn HandlerFunc) error {
	d.handler.Store(fn)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return nil
	}
	d.sigCh = make(chan os.Signal, 64)
	d.stopCh = make(chan struct{})
	signal.Notify(d.sigCh, ProfilingSignal)
	d.running = true

	go d.dispatchLoop(d.sigCh, d.stopCh)
	return nil
}

func (d *Driver) dispatchLoop(sigCh chan os.Signal, stopCh chan struct{}) {
	for {
		select {
		case <-sigCh:
			d.Fire()
		case <-stopCh:
			return
		}
	}
}

// Fire invokes the currently installed handler body, exactly as an
// OS-delivered signal would. Exported so tests can simulate delivery
// deterministically (§8's scenarios don't depend on wall-clock timer
// jitter).
func (d *Driver) Fire() {
	if fn, ok := d.handler.Load().(HandlerFunc); ok && fn != nil {
		fn()
	}
}

// Uninstall stops signal delivery and tears down the dispatch goroutine.
// Safe to call even if SetAction was never called.
func (d *Driver) Uninstall() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return
	}
	signal.Stop(d.sigCh)
	close(d.stopCh)
	d.running = false
	d.handler.Store(HandlerFunc(nil))
}

// IgnoreSignal installs an ignore-disposition for the profiling signal —
// belt-and-braces against any timer-delivered signal still in flight
// after the timer itself has been disarmed (§4.H step 6).
func (d *Driver) IgnoreSignal() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		signal.Stop(d.sigCh)
		close(d.stopCh)
		d.running = false
	}
	d.handler.Store(HandlerFunc(nil))
	signal.Ignore(ProfilingSignal)
}
