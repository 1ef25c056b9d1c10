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
	"fmt"
	"strings"

	"github.com/distribution/reference"

	apperrors "github.com/NVIDIA/gpu-readiness/pkg/errors"
)

// URIScheme marks an output target as an OCI registry reference,
// e.g. "oci://ghcr.io/org/gpu-reports:latest".
const URIScheme = "oci://"

// Reference is a parsed output target: either an OCI registry reference or
// a local file path.
type Reference struct {
	// IsOCI is true for registry references.
	IsOCI bool

	// Registry host, e.g. "ghcr.io" or "localhost:5000". OCI only.
	Registry string

	// Repository path, e.g. "org/gpu-reports". OCI only.
	Repository string

	// Tag of the artifact. Empty means the caller applies a default.
	Tag string

	// LocalPath is the file path for non-OCI targets.
	LocalPath string
}

// ParseOutputTarget classifies an output target string. Targets without the
// oci:// scheme are local paths and always parse successfully.
func ParseOutputTarget(target string) (*Reference, error) {
	if !strings.HasPrefix(target, URIScheme) {
		return &Reference{LocalPath: target}, nil
	}

	named, err := reference.ParseNormalizedNamed(strings.TrimPrefix(target, URIScheme))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid OCI reference %q", target), err)
	}

	ref := &Reference{
		IsOCI:      true,
		Registry:   reference.Domain(named),
		Repository: reference.Path(named),
	}
	if tagged, ok := named.(reference.Tagged); ok {
		ref.Tag = tagged.Tag()
	}
	return ref, nil
}

// String renders the reference back into target form.
func (r *Reference) String() string {
	if !r.IsOCI {
		return r.LocalPath
	}
	if r.Tag == "" {
		return URIScheme + r.Registry + "/" + r.Repository
	}
	return fmt.Sprintf("%s%s/%s:%s", URIScheme, r.Registry, r.Repository, r.Tag)
}
