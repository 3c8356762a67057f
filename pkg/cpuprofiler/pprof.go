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

package cpuprofiler

import (
	"time"

	"github.com/google/pprof/profile"
)

// ToPprof renders the result as a pprof Profile: one "samples" value
// type, a Location per distinct (name, filename) pair, and one Sample
// per materialized trace. This is the boundary artifact an upload daemon
// (out of scope per §1) would consume; producing it is the natural stop
// for this core's output (SPEC_FULL.md Part C).
func (r *Result) ToPprof() *profile.Profile {
	p := &profile.Profile{
		SampleType: []*profile.ValueType{{Type: "samples", Unit: "count"}},
		TimeNanos:  time.Now().UnixNano(),
	}

	funcs := map[string]*profile.Function{}
	locs := map[string]*profile.Location{}

	var nextFuncID, nextLocID uint64

	locationFor := func(f FrameTuple) *profile.Location {
		key := f.Name + "\x00" + f.Filename
		if loc, ok := locs[key]; ok {
			return loc
		}
		fn, ok := funcs[key]
		if !ok {
			nextFuncID++
			fn = &profile.Function{ID: nextFuncID, Name: f.Name, Filename: f.Filename}
			funcs[key] = fn
			p.Function = append(p.Function, fn)
		}
		nextLocID++
		loc := &profile.Location{
			ID:   nextLocID,
			Line: []profile.Line{{Function: fn, Line: int64(f.Line)}},
		}
		locs[key] = loc
		p.Location = append(p.Location, loc)
		return loc
	}

	for _, s := range r.Samples {
		locations := make([]*profile.Location, 0, len(s.Trace))
		// pprof locations are listed leaf-first, matching the trace's
		// own innermost-frame-first order (§4.G step 4).
		for _, f := range s.Trace {
			locations = append(locations, locationFor(f))
		}
		p.Sample = append(p.Sample, &profile.Sample{
			Location: locations,
			Value:    []int64{int64(s.Count)},
		})
	}

	return p
}
