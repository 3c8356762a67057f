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

//go:build linux

package sigtimer

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// SetInterval arms a periodic CPU-time interval timer that delivers the
// profiling signal every period of consumed CPU (§4.G set_interval).
// Setting period<=0 disarms the timer.
//
// Grounded on the teacher's direct use of golang.org/x/sys/unix for raw
// kernel control (subprocess.go's unix.RawSyscall call sites),
// generalized from ptrace control to setitimer(2).
func (d *Driver) SetInterval(period time.Duration) error {
	it := unix.Itimerval{}
	if period > 0 {
		usec := period.Microseconds()
		it.Value.Sec = usec / 1e6
		it.Value.Usec = usec % 1e6
		it.Interval = it.Value
	}
	if err := unix.Setitimer(unix.ITIMER_PROF, &it, nil); err != nil {
		return fmt.Errorf("sigtimer: setitimer(ITIMER_PROF): %w", err)
	}
	return nil
}

// Block sets the profiling signal in the calling thread's signal mask.
func Block() error {
	var set unix.Sigset_t
	sigaddset(&set, ProfilingSignal)
	if err := unix.PthreadSigmask(unix.SIG_BLOCK, &set, nil); err != nil {
		return fmt.Errorf("sigtimer: block: %w", err)
	}
	return nil
}

// Unblock clears the profiling signal from the calling thread's signal
// mask.
func Unblock() error {
	var set unix.Sigset_t
	sigaddset(&set, ProfilingSignal)
	if err := unix.PthreadSigmask(unix.SIG_UNBLOCK, &set, nil); err != nil {
		return fmt.Errorf("sigtimer: unblock: %w", err)
	}
	return nil
}

// sigaddset sets signal s in set. unix.Sigset_t on Linux is a 16-word
// array of uint64, 64 signal bits per word.
func sigaddset(set *unix.Sigset_t, s unix.Signal) {
	word := (uint(s) - 1) / 64
	bit := uint64(1) << ((uint(s) - 1) % 64)
	set.Val[word] |= bit
}
