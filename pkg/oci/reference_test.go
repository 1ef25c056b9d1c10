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

package oci

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/NVIDIA/gpu-readiness/pkg/errors"
)

func TestParseOutputTarget(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   *Reference
	}{
		{
			name:   "local path",
			target: "report.json",
			want:   &Reference{LocalPath: "report.json"},
		},
		{
			name:   "oci with tag",
			target: "oci://ghcr.io/org/gpu-reports:v1.0.0",
			want:   &Reference{IsOCI: true, Registry: "ghcr.io", Repository: "org/gpu-reports", Tag: "v1.0.0"},
		},
		{
			name:   "oci without tag",
			target: "oci://localhost:5000/gpu-reports",
			want:   &Reference{IsOCI: true, Registry: "localhost:5000", Repository: "gpu-reports"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOutputTarget(tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOutputTarget_Invalid(t *testing.T) {
	_, err := ParseOutputTarget("oci://UPPER CASE/not valid")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidRequest))
}

func TestReferenceString(t *testing.T) {
	ref := &Reference{IsOCI: true, Registry: "ghcr.io", Repository: "org/gpu-reports", Tag: "latest"}
	assert.Equal(t, "oci://ghcr.io/org/gpu-reports:latest", ref.String())

	ref.Tag = ""
	assert.Equal(t, "oci://ghcr.io/org/gpu-reports", ref.String())

	local := &Reference{LocalPath: "out/report.yaml"}
	assert.Equal(t, "out/report.yaml", local.String())
}

func TestPush_RequiresOCIReferenceAndTag(t *testing.T) {
	_, err := Push(t.Context(), PushOptions{Reference: &Reference{LocalPath: "x"}})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidRequest))

	_, err = Push(t.Context(), PushOptions{
		Reference: &Reference{IsOCI: true, Registry: "ghcr.io", Repository: "org/r"},
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidRequest))
}
