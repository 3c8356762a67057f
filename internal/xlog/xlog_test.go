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

package xlog

import (
	"bytes"
	"os"
	"testing"

	"github.com/rs/zerolog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelGatesEmission(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	defer SetLevel(zerolog.DebugLevel)

	SetLevel(zerolog.WarnLevel)
	Debugf("should not appear")
	Infof("should not appear either")
	Warningf("this appears")

	out := buf.String()
	assert.NotContains(t, out, "should not appear")
	assert.Contains(t, out, "this appears")
}

func TestIsLogging(t *testing.T) {
	SetOutput(os.Stderr)
	defer SetLevel(zerolog.DebugLevel)

	SetLevel(zerolog.WarnLevel)
	require.False(t, IsLogging(zerolog.DebugLevel))
	require.False(t, IsLogging(zerolog.InfoLevel))
	require.True(t, IsLogging(zerolog.WarnLevel))
	require.True(t, IsLogging(zerolog.ErrorLevel))
}
