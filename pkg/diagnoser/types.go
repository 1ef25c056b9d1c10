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
	"time"

	"github.com/NVIDIA/gpu-readiness/pkg/collector"
	"github.com/NVIDIA/gpu-readiness/pkg/helm"
	"github.com/NVIDIA/gpu-readiness/pkg/inspector"
)

// ClusterReport is the complete result of one diagnostic run. Once Run
// returns it is never mutated; formatters treat it as read-only.
type ClusterReport struct {
	// GeneratedAt is when the run finished.
	GeneratedAt time.Time `json:"generatedAt" yaml:"generatedAt"`

	// Version of the tool that produced the report.
	Version string `json:"version" yaml:"version"`

	// Namespace the GPU operator is expected in.
	Namespace string `json:"namespace" yaml:"namespace"`

	// Nodes holds exactly one report per cluster node, ordered by name.
	Nodes []*inspector.NodeReport `json:"nodes" yaml:"nodes"`

	// DaemonSets is the rollout status of the GPU operator DaemonSets.
	DaemonSets []collector.DaemonSetStatus `json:"daemonSets" yaml:"daemonSets"`

	// GPUPods summarizes GPU-requesting pods across the cluster. Nil when
	// the scan failed; the failure is recorded in Warnings.
	GPUPods *collector.GPUPodSummary `json:"gpuPods,omitempty" yaml:"gpuPods,omitempty"`

	// HelmAudit is the GPU operator release audit.
	HelmAudit *helm.Audit `json:"helmAudit,omitempty" yaml:"helmAudit,omitempty"`

	// Summary aggregates per-node findings.
	Summary Summary `json:"summary" yaml:"summary"`

	// Recommendations are ordered remediation suggestions derived from
	// the findings.
	Recommendations []string `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`

	// Warnings records cluster-scope retrievals that could not complete.
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Summary aggregates node findings for the report header.
type Summary struct {
	TotalNodes             int `json:"totalNodes" yaml:"totalNodes"`
	GPUNodes               int `json:"gpuNodes" yaml:"gpuNodes"`
	NodesWithConfig        int `json:"nodesWithConfig" yaml:"nodesWithConfig"`
	NodesWithNvidiaRuntime int `json:"nodesWithNvidiaRuntime" yaml:"nodesWithNvidiaRuntime"`
	NodesWithMissingBinary int `json:"nodesWithMissingBinary" yaml:"nodesWithMissingBinary"`
	NodesWithLogErrors     int `json:"nodesWithLogErrors" yaml:"nodesWithLogErrors"`
	NodesFailed            int `json:"nodesFailed" yaml:"nodesFailed"`
}

// summarize derives the Summary from the assembled node reports.
func summarize(nodes []*inspector.NodeReport) Summary {
	var s Summary
	s.TotalNodes = len(nodes)

	for _, n := range nodes {
		if n.Node.GPUCapable {
			s.GPUNodes++
		}
		if n.Error != "" {
			s.NodesFailed++
			continue
		}

		hasConfig := false
		for _, c := range n.ContainerdConfigs {
			if c.Exists {
				hasConfig = true
				break
			}
		}
		if hasConfig {
			s.NodesWithConfig++
		}
		if n.HasNvidiaRuntime() {
			s.NodesWithNvidiaRuntime++
		}
		if len(n.MissingBinaries()) > 0 {
			s.NodesWithMissingBinary++
		}
		if len(n.LogErrors.Lines) > 0 {
			s.NodesWithLogErrors++
		}
	}

	return s
}
