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
	"sort"
	"strings"

	"github.com/NVIDIA/gpu-readiness/pkg/k8s/probe"
)

// listDevices returns the NVIDIA device nodes present under /dev on the
// node, sorted. An empty list on a GPU-capable node means the driver has
// not created its device nodes.
func listDevices(ctx context.Context, ex probe.Executor) []string {
	stdout, ok, err := execOutcome(ex.Exec(ctx, "ls", "-1", "/host/dev"))
	if err != nil || !ok {
		return nil
	}

	var devices []string
	for _, entry := range strings.Split(stdout, "\n") {
		entry = strings.TrimSpace(entry)
		if strings.HasPrefix(entry, "nvidia") {
			devices = append(devices, "/dev/"+entry)
		}
	}
	sort.Strings(devices)
	return devices
}
