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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func gpuNode(name string, ready bool, gpus int64) *corev1.Node {
	status := corev1.ConditionFalse
	if ready {
		status = corev1.ConditionTrue
	}
	node := &corev1.Node{
		ObjectMeta: metav1.ObjectMeta{Name: name},
		Status: corev1.NodeStatus{
			Conditions: []corev1.NodeCondition{
				{Type: corev1.NodeReady, Status: status},
			},
		},
	}
	if gpus > 0 {
		node.Status.Allocatable = corev1.ResourceList{
			corev1.ResourceName(GPUResourceName): *resource.NewQuantity(gpus, resource.DecimalSI),
		}
	}
	return node
}

func gpuPod(namespace, name, node string, phase corev1.PodPhase, waitingReason string) *corev1.Pod {
	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Spec: corev1.PodSpec{
			NodeName: node,
			Containers: []corev1.Container{
				{
					Name: "main",
					Resources: corev1.ResourceRequirements{
						Requests: corev1.ResourceList{
							corev1.ResourceName(GPUResourceName): *resource.NewQuantity(1, resource.DecimalSI),
						},
					},
				},
			},
		},
		Status: corev1.PodStatus{Phase: phase},
	}
	if waitingReason != "" {
		pod.Status.ContainerStatuses = []corev1.ContainerStatus{
			{State: corev1.ContainerState{Waiting: &corev1.ContainerStateWaiting{Reason: waitingReason}}},
		}
	}
	return pod
}

func TestNodes_OrderedAndClassified(t *testing.T) {
	clientset := fake.NewClientset(
		gpuNode("worker-b", true, 8),
		gpuNode("worker-a", false, 0),
	)
	c := &Collector{ClientSet: clientset}

	nodes, err := c.Nodes(context.Background())
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	// Ordered by name regardless of list order.
	assert.Equal(t, "worker-a", nodes[0].Name)
	assert.Equal(t, "worker-b", nodes[1].Name)

	assert.False(t, nodes[0].Ready)
	assert.False(t, nodes[0].GPUCapable)
	assert.Equal(t, []string{"worker"}, nodes[0].Roles)

	assert.True(t, nodes[1].Ready)
	assert.True(t, nodes[1].GPUCapable)
}

func TestNodes_RoleLabels(t *testing.T) {
	node := gpuNode("cp-1", true, 0)
	node.Labels = map[string]string{
		"node-role.kubernetes.io/control-plane": "",
		"node-role.kubernetes.io/etcd":          "",
	}
	c := &Collector{ClientSet: fake.NewClientset(node)}

	nodes, err := c.Nodes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"control-plane", "etcd"}, nodes[0].Roles)
}

func TestDaemonSetStatuses_FoundAndMissing(t *testing.T) {
	ds := &appsv1.DaemonSet{
		ObjectMeta: metav1.ObjectMeta{
			Name:      DevicePluginDaemonSet,
			Namespace: "gpu-operator",
		},
		Status: appsv1.DaemonSetStatus{
			DesiredNumberScheduled: 3,
			NumberReady:            2,
			NumberAvailable:        2,
		},
	}
	c := &Collector{ClientSet: fake.NewClientset(ds)}

	statuses := c.DaemonSetStatuses(context.Background(), "gpu-operator",
		DevicePluginDaemonSet, ToolkitDaemonSet)
	require.Len(t, statuses, 2)

	assert.True(t, statuses[0].Found)
	assert.Equal(t, int32(3), statuses[0].Desired)
	assert.Equal(t, int32(2), statuses[0].Ready)

	// Missing DaemonSet reports not-found, never zero replicas.
	assert.False(t, statuses[1].Found)
	assert.Empty(t, statuses[1].Error)
}

func TestGPUPodSummary(t *testing.T) {
	clientset := fake.NewClientset(
		gpuPod("team-a", "train-1", "worker-a", corev1.PodRunning, ""),
		gpuPod("team-a", "train-2", "worker-a", corev1.PodPending, ""),
		gpuPod("team-b", "infer-1", "worker-b", corev1.PodRunning, "CreateContainerError"),
		gpuPod("team-b", "infer-2", "", corev1.PodPending, ""),
		// Non-GPU pod must be ignored entirely.
		&corev1.Pod{
			ObjectMeta: metav1.ObjectMeta{Name: "web", Namespace: "default"},
			Spec:       corev1.PodSpec{NodeName: "worker-a", Containers: []corev1.Container{{Name: "web"}}},
			Status:     corev1.PodStatus{Phase: corev1.PodPending},
		},
	)
	c := &Collector{ClientSet: clientset}

	summary, err := c.GPUPodSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.CountByNode["worker-a"])
	assert.Equal(t, 1, summary.CountByNode["worker-b"])

	require.Len(t, summary.Pending, 3)
	assert.Equal(t, "train-2", summary.Pending[0].Name)
	assert.Equal(t, "infer-1", summary.Pending[1].Name)
	assert.Equal(t, "CreateContainerError", summary.Pending[1].Reason)
	assert.Equal(t, "Not scheduled", summary.Pending[2].Node)
}
