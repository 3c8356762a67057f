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

package sigtimer

import (
	"github.com/GoogleCloudPlatform/cloud-profiler-go/pkg/atomicbitops"
	"github.com/GoogleCloudPlatform/cloud-profiler-go/pkg/hostabi"
	"github.com/GoogleCloudPlatform/cloud-profiler-go/pkg/multiset"
	"github.com/GoogleCloudPlatform/cloud-profiler-go/pkg/trace"
)

// NewHandler builds the profiling signal's handler body (§4.G): on each
// delivery it queries host for the current thread's state, walks its
// frame chain into a stack-local trace, and adds it to asm. A handler
// firing with no host state produces the single NoHostState frame; a
// handler whose Add fails (table full or every probe contended)
// increments unknownStackCount instead of returning an error, matching
// §7's "per-sample failure is accounted, never fatal" rule.
func NewHandler(host hostabi.Host, asm *multiset.ASM, unknownStackCount *atomicbitops.Int64) HandlerFunc {
	return func() {
		var buf [trace.MaxFrames]trace.Frame
		var t trace.CallTrace

		state, ok := host.CurrentState()
		if !ok {
			buf[0] = trace.Frame{Code: 0, Line: trace.NoHostState}
			t = buf[:1]
		} else {
			n := 0
			chain := state.Frames()
			for n < trace.MaxFrames {
				code, line, more := chain.Next()
				if !more {
					break
				}
				buf[n] = trace.Frame{Code: code, Line: line}
				n++
			}
			if n == 0 {
				buf[0] = trace.Frame{Code: 0, Line: trace.NoHostState}
				n = 1
			}
			t = buf[:n]
		}

		if !asm.Add(t) {
			unknownStackCount.Add(1)
		}
	}
}
