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

package inspector

import (
	"context"
	"fmt"

	"github.com/NVIDIA/gpu-readiness/pkg/k8s/probe"
)

// inspectBinaries probes the candidate NVIDIA runtime binary locations.
// Only locations that exist are recorded, in candidate order, each tagged
// with whether the file is executable.
func inspectBinaries(ctx context.Context, ex probe.Executor) RuntimeBinaryFinding {
	finding := RuntimeBinaryFinding{Locations: []BinaryLocation{}}

	for _, path := range CandidateBinaryPaths {
		hostPath := "/host" + path

		_, exists, err := execOutcome(ex.Exec(ctx, "test", "-f", hostPath))
		if err != nil {
			finding.Error = fmt.Sprintf("failed to check %s: %v", path, err)
			return finding
		}
		if !exists {
			continue
		}

		_, executable, err := execOutcome(ex.Exec(ctx, "test", "-x", hostPath))
		if err != nil {
			finding.Error = fmt.Sprintf("failed to check %s: %v", path, err)
			return finding
		}

		finding.Locations = append(finding.Locations, BinaryLocation{
			Path:       path,
			Executable: executable,
		})
	}

	return finding
}
