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

import "fmt"

// WithForkSafety blocks the profiling signal in the calling thread,
// calls fork, and unblocks the signal in both the parent and the child
// before returning — the fork-safety discipline of §4.G and §5, adapted
// to Go.
//
// The spec's pthread_atfork contract registers process-wide
// pre-fork/post-fork handlers that apply to *any* fork() call, anywhere
// in the process. Go exposes no such registry, and a general-purpose
// fork() without an immediate exec is not safe in a multi-threaded Go
// runtime to begin with (only os/exec's combined fork+exec path is
// supported). This module therefore cannot guarantee safety around a
// fork it does not itself perform; WithForkSafety is the guarantee it
// *can* make, for the one fork call site a profiler embedder would route
// through this package. See DESIGN.md's Open Question for the rationale.
func WithForkSafety(fork func() (pid int, err error)) (pid int, err error) {
	if err := Block(); err != nil {
		return 0, fmt.Errorf("sigtimer: fork safety: %w", err)
	}
	defer Unblock() //nolint:errcheck // best-effort: the fork already happened.

	pid, err = fork()
	return pid, err
}
