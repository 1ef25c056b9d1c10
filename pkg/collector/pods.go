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

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Container waiting reasons that indicate a runtime-level failure.
var runtimeFailureReasons = map[string]bool{
	"CreateContainerError":   true,
	"ContainerStatusUnknown": true,
}

// GPUPodSummary scans all pods once and derives both the pending GPU pod
// list and the per-node GPU pod counts. A scan failure is a finding, not a
// fatal condition.
func (c *Collector) GPUPodSummary(ctx context.Context) (*GPUPodSummary, error) {
	list, err := c.ClientSet.CoreV1().Pods(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list pods: %w", err)
	}

	summary := &GPUPodSummary{
		Pending:     []PendingPod{},
		CountByNode: map[string]int{},
	}

	for _, pod := range list.Items {
		if !podRequestsGPU(&pod) {
			continue
		}

		if pod.Spec.NodeName != "" {
			summary.CountByNode[pod.Spec.NodeName]++
		}

		phase := pod.Status.Phase
		reason := runtimeFailureReason(&pod)
		if phase != corev1.PodPending && reason == "" {
			continue
		}

		node := pod.Spec.NodeName
		if node == "" {
			node = "Not scheduled"
		}
		summary.Pending = append(summary.Pending, PendingPod{
			Name:      pod.Name,
			Namespace: pod.Namespace,
			Phase:     string(phase),
			Node:      node,
			Reason:    reason,
		})
	}

	sort.Slice(summary.Pending, func(i, j int) bool {
		a, b := summary.Pending[i], summary.Pending[j]
		if a.Namespace != b.Namespace {
			return a.Namespace < b.Namespace
		}
		return a.Name < b.Name
	})

	slog.Debug("scanned GPU pods",
		slog.Int("pending", len(summary.Pending)),
		slog.Int("nodes", len(summary.CountByNode)))
	return summary, nil
}

// podRequestsGPU reports whether any container in the pod requests GPU resources.
func podRequestsGPU(pod *corev1.Pod) bool {
	for _, container := range pod.Spec.Containers {
		if _, ok := container.Resources.Requests[corev1.ResourceName(GPUResourceName)]; ok {
			return true
		}
	}
	return false
}

// runtimeFailureReason returns the first container waiting reason that maps
// to a known runtime failure, or "".
func runtimeFailureReason(pod *corev1.Pod) string {
	for _, cs := range pod.Status.ContainerStatuses {
		if cs.State.Waiting != nil && runtimeFailureReasons[cs.State.Waiting.Reason] {
			return cs.State.Waiting.Reason
		}
	}
	return ""
}
