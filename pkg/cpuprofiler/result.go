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
	"fmt"
	"strings"
)

// FrameTuple is one resolved frame of a materialized trace: §6's
// "(name, filename, line) triples".
type FrameTuple struct {
	Name     string
	Filename string
	Line     int32
}

// Sample is one distinct captured trace, resolved, and its accumulated
// count. Two Samples may carry equal resolved traces when different
// CodeIDs resolve to the same (name, filename). It is the Go rendering
// of a "mapping trace-tuple -> count" entry: Go map keys
// must be comparable, and a variable-length trace tuple is not, so the
// mapping is expressed as a slice of entries instead (see SPEC_FULL.md
// §6).
type Sample struct {
	Trace []FrameTuple
	Count uint64
}

// Stats carries operational counters alongside the profile (§Part C of
// SPEC_FULL.md): a small surface beyond the bare mapping that an
// embedder of this library would want, in addition to the synthetic
// [Unknown] trace already folded into Samples.
type Stats struct {
	UnknownStackCount int64
}

// Result is a materialized profile: every distinct trace sampled during
// the session, resolved to (name, filename, line) triples, plus the
// synthetic [Unknown] and [Unknown - No Host State] entries §4.H
// prescribes.
type Result struct {
	Samples []Sample
	stats   Stats
}

// Stats returns the session's operational counters.
func (r *Result) Stats() Stats { return r.stats }

// Map renders the result as a plain map keyed by a stable string
// encoding of the trace tuple — a convenience view for callers that want
// map semantics and don't need the ordered []FrameTuple itself.
func (r *Result) Map() map[string]uint64 {
	m := make(map[string]uint64, len(r.Samples))
	for _, s := range r.Samples {
		m[traceTupleKey(s.Trace)] += s.Count
	}
	return m
}

func traceTupleKey(ft []FrameTuple) string {
	var b strings.Builder
	for _, f := range ft {
		fmt.Fprintf(&b, "%s\x00%s\x00%d\x01", f.Name, f.Filename, f.Line)
	}
	return b.String()
}
