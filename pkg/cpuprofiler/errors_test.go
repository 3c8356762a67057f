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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("setitimer: permission denied")
	err := &Error{Kind: TimerArmFailed, Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "TimerArmFailed")
	assert.Contains(t, err.Error(), "permission denied")
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "TimerArmFailed", TimerArmFailed.String())
	assert.Equal(t, "SignalInstallFailed", SignalInstallFailed.String())
	assert.Equal(t, "AllocOrEncodeFailure", AllocOrEncodeFailure.String())
	assert.Equal(t, "Unknown", ErrorKind(0).String())
}

func TestErrorWithoutCause(t *testing.T) {
	err := &Error{Kind: AllocOrEncodeFailure}
	assert.Equal(t, "cpuprofiler: AllocOrEncodeFailure", err.Error())
	assert.Nil(t, err.Unwrap())
}
