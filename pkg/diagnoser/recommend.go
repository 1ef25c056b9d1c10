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

package diagnoser

import (
	"fmt"
	"strings"
)

// recommend derives ordered remediation suggestions from the assembled
// report. The Helm fix recommendation appears exactly when the release was
// found and its audit is invalid.
func recommend(report *ClusterReport) []string {
	var recs []string

	if audit := report.HelmAudit; audit != nil {
		switch {
		case audit.Error != "":
			recs = append(recs,
				"Helm release state could not be determined; re-run once helm is reachable")
		case !audit.Found:
			recs = append(recs, fmt.Sprintf(
				"Install the GPU operator: helm install gpu-operator nvidia/gpu-operator -n %s --create-namespace",
				report.Namespace))
		case !audit.Valid:
			recs = append(recs, fmt.Sprintf(
				"Fix the GPU operator toolkit configuration: gpuready fix --release %s -n %s (use --dry-run to review the merged values first)",
				audit.Release, report.Namespace))
		}
	}

	for _, ds := range report.DaemonSets {
		switch {
		case ds.Error != "":
			continue
		case !ds.Found:
			recs = append(recs, fmt.Sprintf(
				"DaemonSet %s is missing from namespace %s; check the GPU operator deployment",
				ds.Name, ds.Namespace))
		case ds.Ready < ds.Desired:
			recs = append(recs, fmt.Sprintf(
				"DaemonSet %s has %d/%d pods ready; inspect its pod events",
				ds.Name, ds.Ready, ds.Desired))
		}
	}

	var missingBinaryNodes, noRuntimeNodes []string
	for _, n := range report.Nodes {
		if n.Error != "" {
			continue
		}
		if len(n.MissingBinaries()) > 0 {
			missingBinaryNodes = append(missingBinaryNodes, n.Node.Name)
		}
		if n.Node.GPUCapable && !n.HasNvidiaRuntime() {
			noRuntimeNodes = append(noRuntimeNodes, n.Node.Name)
		}
	}
	if len(missingBinaryNodes) > 0 {
		recs = append(recs, fmt.Sprintf(
			"Containerd config points at a missing NVIDIA runtime binary on: %s; the toolkit installDir and containerd BinaryName disagree",
			strings.Join(missingBinaryNodes, ", ")))
	}
	if len(noRuntimeNodes) > 0 {
		recs = append(recs, fmt.Sprintf(
			"GPU-capable nodes without an NVIDIA runtime registration in containerd: %s",
			strings.Join(noRuntimeNodes, ", ")))
	}

	if report.Summary.NodesFailed > 0 {
		recs = append(recs, fmt.Sprintf(
			"%d node(s) could not be inspected; their findings are unknown, not clean",
			report.Summary.NodesFailed))
	}

	return recs
}
