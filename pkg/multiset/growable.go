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

package multiset

import "github.com/GoogleCloudPlatform/cloud-profiler-go/pkg/trace"

// entry is one bucket of the growable multiset: a trace and its
// accumulated count. Mirrors runtime/mprof.go's bucket — a hash-keyed
// record holding the stack and its tally — except lookup here is a plain
// Go map keyed by trace.Key() rather than a hand-rolled hash-bucket
// chain, since nothing about Growable runs in a signal handler.
type entry struct {
	trace trace.CallTrace
	count uint64
}

// Growable is the unbounded, single-threaded mapping from a CallTrace to
// an accumulated sample count (Component D, §3). It is not safe for
// concurrent use — harvesting is the only writer, and it always runs on
// the driver thread.
type Growable struct {
	buckets map[string]*entry
}

// NewGrowable returns an empty growable multiset.
func NewGrowable() *Growable {
	return &Growable{buckets: make(map[string]*entry)}
}

// Add folds count occurrences of t into the multiset.
func (g *Growable) Add(t trace.CallTrace, count uint64) {
	key := t.Key()
	if e, ok := g.buckets[key]; ok {
		e.count += count
		return
	}
	g.buckets[key] = &entry{trace: t.Clone(), count: count}
}

// Len reports the number of distinct traces currently held.
func (g *Growable) Len() int { return len(g.buckets) }

// Each calls fn once per distinct trace, in no particular order.
func (g *Growable) Each(fn func(t trace.CallTrace, count uint64)) {
	for _, e := range g.buckets {
		fn(e.trace, e.count)
	}
}
