// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStructuredError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *StructuredError
		want string
	}{
		{
			name: "without cause",
			err:  New(ErrCodeProbeNotReady, "probe pod never became ready"),
			want: "[PROBE_NOT_READY] probe pod never became ready",
		},
		{
			name: "with cause",
			err:  Wrap(ErrCodeExecutionFailure, "cat failed", errors.New("exit status 1")),
			want: "[EXECUTION_FAILURE] cat failed: exit status 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestStructuredError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeClusterUnreachable, "failed to list nodes", cause)

	assert.ErrorIs(t, err, cause)

	var se *StructuredError
	assert.ErrorAs(t, fmt.Errorf("run aborted: %w", err), &se)
	assert.Equal(t, ErrCodeClusterUnreachable, se.Code)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodeTimeout, CodeOf(New(ErrCodeTimeout, "exec timed out")))
	assert.Equal(t, ErrCodeInternal, CodeOf(errors.New("plain error")))

	// Wrapped with fmt still classifies.
	wrapped := fmt.Errorf("node worker-1: %w", New(ErrCodeProbeNotReady, "not ready"))
	assert.Equal(t, ErrCodeProbeNotReady, CodeOf(wrapped))
}

func TestIsCode(t *testing.T) {
	err := Wrap(ErrCodeReleaseNotFound, "no gpu-operator release", errors.New("not found"))
	assert.True(t, IsCode(err, ErrCodeReleaseNotFound))
	assert.False(t, IsCode(err, ErrCodeNotFound))
	assert.False(t, IsCode(errors.New("plain"), ErrCodeNotFound))
}

func TestIsCode_NestedCode(t *testing.T) {
	inner := New(ErrCodeReleaseNotFound, "no gpu-operator release")
	outer := Wrap(ErrCodeInternal, "audit failed", inner)

	// The inner code is still found behind an outer wrap with a
	// different code.
	assert.True(t, IsCode(outer, ErrCodeReleaseNotFound))
	assert.True(t, IsCode(outer, ErrCodeInternal))
	assert.False(t, IsCode(outer, ErrCodeTimeout))

	// fmt wrapping between the two layers does not hide the inner code.
	mixed := Wrap(ErrCodeExecutionFailure, "helm failed",
		fmt.Errorf("run: %w", inner))
	assert.True(t, IsCode(mixed, ErrCodeReleaseNotFound))
}

func TestNewWithContext(t *testing.T) {
	err := NewWithContext(ErrCodeExecutionFailure, "command failed", map[string]any{
		"stderr": "permission denied",
		"exit":   1,
	})
	assert.Equal(t, "permission denied", err.Context["stderr"])
	assert.Equal(t, 1, err.Context["exit"])
}
