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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultMapKeysDistinctTracesSeparately(t *testing.T) {
	result := &Result{
		Samples: []Sample{
			{Trace: []FrameTuple{{Name: "f", Filename: "a.py", Line: 1}}, Count: 3},
			{Trace: []FrameTuple{{Name: "f", Filename: "a.py", Line: 2}}, Count: 1},
		},
	}

	m := result.Map()
	assert.Len(t, m, 2)

	var total uint64
	for _, c := range m {
		total += c
	}
	assert.Equal(t, uint64(4), total)
}

func TestResultMapEmpty(t *testing.T) {
	result := &Result{}
	assert.Empty(t, result.Map())
}

func TestResultStats(t *testing.T) {
	result := &Result{stats: Stats{UnknownStackCount: 7}}
	assert.Equal(t, int64(7), result.Stats().UnknownStackCount)
}
