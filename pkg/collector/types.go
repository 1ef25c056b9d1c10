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

package collector

// GPUResourceName is the extended resource advertised by the NVIDIA device plugin.
const GPUResourceName = "nvidia.com/gpu"

// NodeInfo describes one cluster node at enumeration time. Immutable for
// the duration of a diagnostic run.
type NodeInfo struct {
	// Name is the node identity used to key all per-node findings.
	Name string `json:"name" yaml:"name"`

	// Ready reflects the node's Ready condition.
	Ready bool `json:"ready" yaml:"ready"`

	// Roles lists the node-role.kubernetes.io labels, or ["worker"] if none.
	Roles []string `json:"roles" yaml:"roles"`

	// GPUCapable is true when the node advertises allocatable GPUs.
	GPUCapable bool `json:"gpuCapable" yaml:"gpuCapable"`

	// GPUPods is the number of pods on this node requesting GPU resources.
	GPUPods int `json:"gpuPods" yaml:"gpuPods"`
}

// DaemonSetStatus captures the rollout state of one DaemonSet.
type DaemonSetStatus struct {
	Name      string `json:"name" yaml:"name"`
	Namespace string `json:"namespace" yaml:"namespace"`

	// Found is false when the DaemonSet does not exist in the namespace.
	// Absence is a finding, not zero replicas.
	Found bool `json:"found" yaml:"found"`

	Desired   int32 `json:"desired" yaml:"desired"`
	Ready     int32 `json:"ready" yaml:"ready"`
	Available int32 `json:"available" yaml:"available"`

	// Error records a retrieval failure other than not-found.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// PendingPod is a GPU-requesting pod stuck in a non-ready state.
type PendingPod struct {
	Name      string `json:"name" yaml:"name"`
	Namespace string `json:"namespace" yaml:"namespace"`
	Phase     string `json:"phase" yaml:"phase"`

	// Node is the assigned node, or "Not scheduled".
	Node string `json:"node" yaml:"node"`

	// Reason is the container waiting reason when one indicates a runtime
	// failure (CreateContainerError, ContainerStatusUnknown).
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// GPUPodSummary aggregates one cluster-wide pod scan: the pending GPU pods
// and the per-node count of GPU-requesting pods.
type GPUPodSummary struct {
	Pending     []PendingPod   `json:"pending" yaml:"pending"`
	CountByNode map[string]int `json:"countByNode" yaml:"countByNode"`
}
