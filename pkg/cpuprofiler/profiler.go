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

// Package cpuprofiler implements the collector session (Component H):
// it orchestrates reset, start, periodic harvest, stop, final harvest,
// and materialization into a caller-facing Result.
package cpuprofiler

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/GoogleCloudPlatform/cloud-profiler-go/internal/xlog"
	"github.com/GoogleCloudPlatform/cloud-profiler-go/pkg/atomicbitops"
	"github.com/GoogleCloudPlatform/cloud-profiler-go/pkg/clock"
	"github.com/GoogleCloudPlatform/cloud-profiler-go/pkg/codedeath"
	"github.com/GoogleCloudPlatform/cloud-profiler-go/pkg/hostabi"
	"github.com/GoogleCloudPlatform/cloud-profiler-go/pkg/multiset"
	"github.com/GoogleCloudPlatform/cloud-profiler-go/pkg/sigtimer"
	"github.com/GoogleCloudPlatform/cloud-profiler-go/pkg/trace"
)

// flushInterval is the harvest loop's tick (§4.H step 5).
const flushInterval = 100 * time.Millisecond

// lifecycleState is the session state machine (§4.H): Idle -> Armed ->
// Running -> Draining -> Materializing -> Idle.
type lifecycleState int

const (
	stateIdle lifecycleState = iota
	stateArmed
	stateRunning
	stateDraining
	stateMaterializing
)

// Session orchestrates one invocation of Collect, from arming to result
// materialization (GLOSSARY: "Session"). Only one Session should be
// collecting per process at a time — enforced by the caller per §4.H;
// sessionGuard below also serializes Collect calls, so a second caller
// blocks until the first session finishes.
type Session struct {
	// Logger follows the per-session Logger field convention of a real
	// Go CPU-profiling session (cf. coral's CPUProfileSession{Logger
	// zerolog.Logger}). NewSession sets it to a stderr JSON logger.
	// Collect and materialize do not write to it; they log through
	// internal/xlog.
	Logger zerolog.Logger

	host  hostabi.Host
	asm   *multiset.ASM
	cdm   *codedeath.Map
	state lifecycleState
}

var sessionGuard sync.Mutex

// NewSession returns a session bound to host, using the process-lifetime
// ASM and CodeDeathMap singletons (§3 Ownership).
func NewSession(host hostabi.Host) *Session {
	return &Session{
		Logger: zerolog.New(os.Stderr).With().Timestamp().Str("component", "cpuprofiler").Logger(),
		host:   host,
		asm:    multiset.GlobalASM(),
		cdm:    codedeath.Global(),
	}
}

var (
	hostMu      sync.RWMutex
	currentHost hostabi.Host
)

// SetHost registers the process-wide host adapter. Must be called once,
// before the first call to Profile, by the embedding application (the
// configuration entry point, out of scope per §1).
func SetHost(host hostabi.Host) {
	hostMu.Lock()
	defer hostMu.Unlock()
	currentHost = host
}

func registeredHost() (hostabi.Host, bool) {
	hostMu.RLock()
	defer hostMu.RUnlock()
	return currentHost, currentHost != nil
}

// Profile is the public operation (§6): profile_cpu(duration, period) ->
// mapping, rendered as a *Result. duration and period must be positive,
// except duration == 0, which is a valid degenerate request that returns
// an empty Result without arming any timer (§8 scenario 5).
func Profile(ctx context.Context, duration, period time.Duration) (*Result, error) {
	host, ok := registeredHost()
	if !ok {
		return nil, fmt.Errorf("cpuprofiler: no host registered; call SetHost before Profile")
	}
	return NewSession(host).Collect(ctx, duration, period)
}

// Collect runs the ten-step procedure of §4.H. ctx cancellation stops
// sampling early and still harvests and materializes whatever was
// collected — the spec names no cancellation contract, so this module
// resolves it as an early, lossless stop rather than an abandoned
// collection (SPEC_FULL.md §6).
func (s *Session) Collect(ctx context.Context, duration, period time.Duration) (*Result, error) {
	if period <= 0 {
		return nil, fmt.Errorf("cpuprofiler: period must be positive, got %s", period)
	}
	if duration < 0 {
		return nil, fmt.Errorf("cpuprofiler: duration must not be negative, got %s", duration)
	}

	sessionGuard.Lock()
	defer sessionGuard.Unlock()

	var unknownStackCount atomicbitops.Int64
	gm := multiset.NewGrowable()

	if duration == 0 {
		s.state = stateIdle
		return &Result{}, nil
	}

	// Step 1: reset.
	s.state = stateArmed
	multiset.Reset()
	driver := sigtimer.NewDriver()
	handler := sigtimer.NewHandler(s.host, s.asm, &unknownStackCount)
	if err := driver.SetAction(handler); err != nil {
		s.state = stateIdle
		xlog.Errorf("cpuprofiler: signal install failed: %v", err)
		return nil, &Error{Kind: SignalInstallFailed, Err: err}
	}

	// Step 2: install CDH for the session's duration, scoped so every
	// exit path uninstalls it.
	s.host.Lock()
	s.cdm.Reset()
	s.cdm.Install(s.host)
	s.host.Unlock()
	defer func() {
		s.host.Lock()
		s.cdm.Uninstall()
		s.host.Unlock()
	}()

	// Step 3: start the timer.
	if err := driver.SetInterval(period); err != nil {
		driver.Uninstall()
		s.state = stateIdle
		xlog.Errorf("cpuprofiler: timer arm failed: %v", err)
		return nil, &Error{Kind: TimerArmFailed, Err: err}
	}
	s.state = stateRunning

	// Step 4: the host's global lock is not held here; other host
	// threads run freely while sampling proceeds.

	// Step 5: harvest loop.
	deadline := clock.Now().Add(duration)
loop:
	for {
		remaining := clock.Until(deadline)
		if remaining < 2*flushInterval {
			break loop
		}
		select {
		case <-ctx.Done():
			break loop
		case <-clock.After(flushInterval):
		}
		multiset.Harvest(s.asm, gm)
		if xlog.IsLogging(zerolog.DebugLevel) {
			xlog.Debugf("cpuprofiler: harvested tick, %d distinct traces so far", gm.Len())
		}
	}
	if remaining := clock.Until(deadline); remaining > 0 {
		select {
		case <-ctx.Done():
		case <-clock.After(remaining):
		}
	}

	// Step 6: stop.
	s.state = stateDraining
	if err := driver.SetInterval(0); err != nil {
		xlog.Warningf("cpuprofiler: disarm timer: %v", err)
	}
	driver.IgnoreSignal()

	// Step 7: settle and final harvest.
	clock.SleepFor(flushInterval)
	multiset.Harvest(s.asm, gm)

	// Step 8: reacquire the host lock for materialization.
	s.state = stateMaterializing
	s.host.Lock()
	defer s.host.Unlock()

	result, err := s.materialize(gm, &unknownStackCount)
	s.state = stateIdle
	return result, err
}

// materialize walks gm, resolving every frame's CodeID to a FuncLoc
// (§4.H step 9). Any panic during resolution or encoding is converted
// into an AllocOrEncodeFailure, discarding the partial result, per §4.H
// step 9's failure semantics ("abort the current materialization and
// return an error; previously collected data is discarded").
func (s *Session) materialize(gm *multiset.Growable, unknownStackCount *atomicbitops.Int64) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &Error{Kind: AllocOrEncodeFailure, Err: fmt.Errorf("materialize: %v", r)}
			xlog.Errorf("cpuprofiler: %v", err)
		}
	}()

	var noHostStateCount uint64
	samples := make([]Sample, 0, gm.Len()+1)
	gm.Each(func(t trace.CallTrace, count uint64) {
		resolved, sawNoHostState := s.resolveTrace(t)
		if sawNoHostState {
			noHostStateCount += count
		}
		samples = append(samples, Sample{Trace: resolved, Count: count})
	})

	// §7: TableFull and NoHostState are non-fatal, folded into the
	// profile rather than returned as an error, but still logged at
	// warning level — the same propagation fatal errors get via
	// xlog.Errorf above.
	if noHostStateCount > 0 {
		xlog.Warningf("cpuprofiler: %d sample(s) had no host state on the interrupted thread", noHostStateCount)
	}

	if n := unknownStackCount.Load(); n > 0 {
		xlog.Warningf("cpuprofiler: %d sample(s) dropped, multiset table full or contended", n)
		samples = append(samples, Sample{
			Trace: []FrameTuple{{Name: "[Unknown]", Filename: "", Line: 0}},
			Count: uint64(n),
		})
	}

	return &Result{
		Samples: samples,
		stats:   Stats{UnknownStackCount: unknownStackCount.Load()},
	}, nil
}

// resolveTrace resolves every frame of t, in order, via the two-tier
// policy of §4.H step 9: CDH first (freed records), then a live query.
// sawNoHostState reports whether any frame was the NoHostState sentinel,
// so the caller can fold that non-fatal condition into a warning log
// (§7).
func (s *Session) resolveTrace(t trace.CallTrace) (out []FrameTuple, sawNoHostState bool) {
	out = make([]FrameTuple, len(t))
	for i, f := range t {
		if f.Line == trace.NoHostState {
			out[i] = FrameTuple{Name: "[Unknown - No Host State]", Filename: "", Line: f.Line}
			sawNoHostState = true
			continue
		}
		loc, ok := s.cdm.Resolve(f.Code)
		if !ok {
			loc, ok = s.host.ResolveLive(f.Code)
		}
		if !ok {
			// Neither resolution tier has an entry. Not named by the
			// spec (which only describes the two-tier fallback, not a
			// full double-miss); resolved as a generic unknown frame
			// rather than failing the whole trace.
			loc = trace.FuncLoc{Name: "[Unknown]", Filename: ""}
		}
		out[i] = FrameTuple{Name: loc.Name, Filename: loc.Filename, Line: f.Line}
	}
	return out, sawNoHostState
}
