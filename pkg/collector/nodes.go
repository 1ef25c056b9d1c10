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
	"log/slog"
	"sort"
	"strings"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/NVIDIA/gpu-readiness/pkg/errors"
	"github.com/NVIDIA/gpu-readiness/pkg/k8s/client"
)

const nodeRoleLabelPrefix = "node-role.kubernetes.io/"

// Collector retrieves cluster-scope state: nodes, DaemonSet rollout status,
// and GPU pod placement.
type Collector struct {
	ClientSet client.Interface
}

// Nodes returns all cluster nodes ordered by name. Fails with
// CLUSTER_UNREACHABLE when the control plane cannot be contacted; this is
// the only collector failure that aborts a diagnostic run.
func (c *Collector) Nodes(ctx context.Context) ([]NodeInfo, error) {
	list, err := c.ClientSet.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeClusterUnreachable, "failed to list cluster nodes", err)
	}

	nodes := make([]NodeInfo, 0, len(list.Items))
	for _, n := range list.Items {
		nodes = append(nodes, NodeInfo{
			Name:       n.Name,
			Ready:      nodeReady(&n),
			Roles:      nodeRoles(&n),
			GPUCapable: nodeHasGPU(&n),
		})
	}

	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })

	slog.Debug("enumerated cluster nodes", slog.Int("count", len(nodes)))
	return nodes, nil
}

func nodeReady(node *corev1.Node) bool {
	for _, cond := range node.Status.Conditions {
		if cond.Type == corev1.NodeReady {
			return cond.Status == corev1.ConditionTrue
		}
	}
	return false
}

func nodeRoles(node *corev1.Node) []string {
	var roles []string
	for label := range node.Labels {
		if strings.HasPrefix(label, nodeRoleLabelPrefix) {
			if role := strings.TrimPrefix(label, nodeRoleLabelPrefix); role != "" {
				roles = append(roles, role)
			}
		}
	}
	if len(roles) == 0 {
		return []string{"worker"}
	}
	sort.Strings(roles)
	return roles
}

func nodeHasGPU(node *corev1.Node) bool {
	qty, ok := node.Status.Allocatable[corev1.ResourceName(GPUResourceName)]
	return ok && !qty.IsZero()
}
