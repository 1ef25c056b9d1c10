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

package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/NVIDIA/gpu-readiness/pkg/collector"
	"github.com/NVIDIA/gpu-readiness/pkg/diagnoser"
	"github.com/NVIDIA/gpu-readiness/pkg/helm"
	"github.com/NVIDIA/gpu-readiness/pkg/inspector"
)

func sampleReport() *diagnoser.ClusterReport {
	return &diagnoser.ClusterReport{
		GeneratedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Version:     "1.2.3",
		Namespace:   "gpu-operator",
		Nodes: []*inspector.NodeReport{
			{
				Node: collector.NodeInfo{Name: "worker-a", Ready: true, Roles: []string{"worker"}, GPUCapable: true, GPUPods: 2},
				ContainerdConfigs: []inspector.ContainerdConfigFinding{
					{Path: "/etc/containerd/config.toml", Exists: true, NvidiaRuntimeConfigured: true,
						BinaryName: "/usr/bin/nvidia-container-runtime", BinaryExists: false},
				},
				RuntimeBinary: inspector.RuntimeBinaryFinding{Locations: []inspector.BinaryLocation{}},
				LogErrors:     inspector.LogErrorFinding{Collected: true, Lines: []string{"e1", "e2", "e3", "e4"}},
				Devices:       []string{"/dev/nvidia0"},
			},
			{
				Node:      collector.NodeInfo{Name: "worker-b", Ready: true, Roles: []string{"worker"}},
				Error:     "probe pod not ready",
				ErrorCode: "PROBE_NOT_READY",
			},
		},
		DaemonSets: []collector.DaemonSetStatus{
			{Name: collector.DevicePluginDaemonSet, Namespace: "gpu-operator", Found: true, Desired: 3, Ready: 3, Available: 3},
			{Name: collector.ToolkitDaemonSet, Namespace: "gpu-operator"},
		},
		GPUPods: &collector.GPUPodSummary{
			Pending: []collector.PendingPod{
				{Name: "train-1", Namespace: "team-a", Phase: "Pending", Node: "Not scheduled"},
			},
			CountByNode: map[string]int{"worker-a": 2},
		},
		HelmAudit: &helm.Audit{
			Release: "gpu-operator", Namespace: "gpu-operator", Found: true,
			Issues: []helm.Issue{
				{Key: "toolkit.env.CONTAINERD_CONFIG", Expected: "/var/lib/k8s-containerd/k8s-containerd/etc/containerd/config.toml", Missing: true},
			},
		},
		Summary: diagnoser.Summary{
			TotalNodes: 2, GPUNodes: 1, NodesWithConfig: 1,
			NodesWithNvidiaRuntime: 1, NodesWithMissingBinary: 1,
			NodesWithLogErrors: 1, NodesFailed: 1,
		},
		Recommendations: []string{"Fix the GPU operator toolkit configuration: gpuready fix"},
	}
}

func TestRender_Deterministic(t *testing.T) {
	r := sampleReport()
	assert.Equal(t, Render(r), Render(r))
}

func TestRender_Sections(t *testing.T) {
	out := Render(sampleReport())

	assert.Contains(t, out, "GPU Readiness Report")
	assert.Contains(t, out, "Cluster Summary")
	assert.Contains(t, out, "team-a/train-1 on Not scheduled (Pending)")
	assert.Contains(t, out, "nvidia-device-plugin-daemonset")
	assert.Contains(t, out, "NOT FOUND")
	assert.Contains(t, out, "1 issue(s)")
	assert.Contains(t, out, "CONTAINERD_CONFIG missing")
	assert.Contains(t, out, "BinaryName /usr/bin/nvidia-container-runtime (MISSING)")
	assert.Contains(t, out, "runtime binary: not found at any known location")
	assert.Contains(t, out, "4 runtime error(s)")
	// Only the tail of the journal errors is shown.
	assert.NotContains(t, out, "e1")
	assert.Contains(t, out, "e4")
	assert.Contains(t, out, "1. Fix the GPU operator toolkit configuration")
}

func TestRender_SectionOrder(t *testing.T) {
	out := Render(sampleReport())

	sections := []string{
		"Pending GPU Pods",
		"Cluster Summary",
		"GPU Operator Daemonsets",
		"Helm Release Audit",
		"Nodes",
		"Recommendations",
	}

	prev := -1
	for _, name := range sections {
		// Anchor on the heading line so body text (e.g. the summary's
		// "Nodes:" counter) cannot match first.
		idx := strings.Index(out, "\n"+name+"\n")
		assert.Greater(t, idx, prev, "section %q out of order", name)
		prev = idx
	}
}

func TestRender_FailedNodeDistinguished(t *testing.T) {
	out := Render(sampleReport())

	// A failed node is "could not inspect", never a clean result.
	assert.Contains(t, out, "Could not inspect (PROBE_NOT_READY)")
}

func TestRender_CouldNotDetermineVsClean(t *testing.T) {
	r := &diagnoser.ClusterReport{
		Namespace: "gpu-operator",
		Nodes: []*inspector.NodeReport{
			{
				Node:          collector.NodeInfo{Name: "worker-a", Ready: true},
				LogErrors:     inspector.LogErrorFinding{Error: "journalctl not available"},
				RuntimeBinary: inspector.RuntimeBinaryFinding{},
			},
		},
	}

	out := Render(r)
	assert.Contains(t, out, "containerd journal: could not determine")
	assert.NotContains(t, out, "no runtime errors in window")

	// Pod scan missing entirely is also "could not determine".
	assert.Contains(t, out, "Could not determine: pod scan failed.")
}

func TestRender_NoIssues(t *testing.T) {
	r := &diagnoser.ClusterReport{
		Namespace: "gpu-operator",
		GPUPods:   &collector.GPUPodSummary{Pending: []collector.PendingPod{}},
	}

	out := Render(r)
	assert.Contains(t, out, "None: all GPU-requesting pods are running.")
	assert.Contains(t, out, "None: no issues found.")
}
