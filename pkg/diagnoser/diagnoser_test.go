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
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"

	"github.com/NVIDIA/gpu-readiness/pkg/collector"
	apperrors "github.com/NVIDIA/gpu-readiness/pkg/errors"
	"github.com/NVIDIA/gpu-readiness/pkg/helm"
	"github.com/NVIDIA/gpu-readiness/pkg/inspector"
	"github.com/NVIDIA/gpu-readiness/pkg/k8s/probe"
)

func testNode(name string, gpus int64) *corev1.Node {
	node := &corev1.Node{
		ObjectMeta: metav1.ObjectMeta{Name: name},
		Status: corev1.NodeStatus{
			Conditions: []corev1.NodeCondition{
				{Type: corev1.NodeReady, Status: corev1.ConditionTrue},
			},
		},
	}
	if gpus > 0 {
		node.Status.Allocatable = corev1.ResourceList{
			corev1.ResourceName(collector.GPUResourceName): *resource.NewQuantity(gpus, resource.DecimalSI),
		}
	}
	return node
}

// staticExecutor answers every check as absent and every read as empty.
type staticExecutor struct{}

func (staticExecutor) Exec(_ context.Context, command ...string) (*probe.Result, error) {
	if command[0] == "test" {
		return &probe.Result{ExitCode: 1}, errors.New("exit status 1")
	}
	return &probe.Result{}, nil
}

// scriptedProber fails listed nodes and hands everything else a static
// executor.
type scriptedProber struct {
	failNodes map[string]error
}

func (p *scriptedProber) WithExecutor(ctx context.Context, nodeName string, fn func(context.Context, probe.Executor) error) error {
	if err := p.failNodes[nodeName]; err != nil {
		return err
	}
	return fn(ctx, staticExecutor{})
}

// scriptedHelm answers helm invocations keyed by the first two args.
type scriptedHelm struct {
	stdout map[string]string
	stderr map[string]string
	fail   map[string]bool
}

func (f *scriptedHelm) Run(_ context.Context, args ...string) (string, string, error) {
	key := strings.Join(args[:2], " ")
	var err error
	if f.fail[key] {
		err = errors.New("exit status 1")
	}
	return f.stdout[key], f.stderr[key], err
}

func newDiagnoser(clientset *fake.Clientset, prober inspector.Prober, runner helm.Runner) *Diagnoser {
	d := &Diagnoser{
		Collector: &collector.Collector{ClientSet: clientset},
		Inspector: &inspector.Inspector{Prober: prober},
		Version:   "test",
		Namespace: "gpu-operator",
	}
	if runner != nil {
		d.Helm = &helm.Client{Runner: runner, Release: "gpu-operator", Namespace: "gpu-operator"}
	}
	return d
}

func TestRun_OneReportPerNodeWithFaultIsolation(t *testing.T) {
	clientset := fake.NewClientset(
		testNode("worker-c", 8),
		testNode("worker-a", 8),
		testNode("worker-b", 0),
	)
	prober := &scriptedProber{
		failNodes: map[string]error{
			"worker-b": apperrors.New(apperrors.ErrCodeProbeNotReady, "probe pod not ready"),
		},
	}

	report, err := newDiagnoser(clientset, prober, nil).Run(context.Background())
	require.NoError(t, err)

	// Exactly one report per node, ordered by name, despite one failure.
	require.Len(t, report.Nodes, 3)
	assert.Equal(t, "worker-a", report.Nodes[0].Node.Name)
	assert.Equal(t, "worker-b", report.Nodes[1].Node.Name)
	assert.Equal(t, "worker-c", report.Nodes[2].Node.Name)

	assert.Empty(t, report.Nodes[0].Error)
	assert.Equal(t, string(apperrors.ErrCodeProbeNotReady), report.Nodes[1].ErrorCode)
	assert.Empty(t, report.Nodes[2].Error)

	assert.Equal(t, 3, report.Summary.TotalNodes)
	assert.Equal(t, 2, report.Summary.GPUNodes)
	assert.Equal(t, 1, report.Summary.NodesFailed)
	assert.False(t, report.GeneratedAt.IsZero())

	// DaemonSet status was collected even with no operator installed.
	require.Len(t, report.DaemonSets, 2)
	assert.False(t, report.DaemonSets[0].Found)
}

func TestRun_ClusterUnreachable(t *testing.T) {
	clientset := fake.NewClientset()
	clientset.PrependReactor("list", "nodes",
		func(k8stesting.Action) (bool, runtime.Object, error) {
			return true, nil, errors.New("connection refused")
		})

	_, err := newDiagnoser(clientset, &scriptedProber{}, nil).Run(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeClusterUnreachable))
}

func TestRun_HelmFixRecommendationOnlyWhenInvalid(t *testing.T) {
	clientset := fake.NewClientset(testNode("worker-a", 8))

	invalid := &scriptedHelm{
		stdout: map[string]string{"get values": "toolkit:\n  enabled: false\n"},
	}
	report, err := newDiagnoser(clientset, &scriptedProber{}, invalid).Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, report.HelmAudit)
	assert.False(t, report.HelmAudit.Valid)
	assert.True(t, hasFixRecommendation(report.Recommendations))

	valid := &scriptedHelm{
		stdout: map[string]string{"get values": validValuesDoc},
	}
	report, err = newDiagnoser(clientset, &scriptedProber{}, valid).Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, report.HelmAudit)
	assert.True(t, report.HelmAudit.Valid, "issues: %v", report.HelmAudit.Issues)
	assert.False(t, hasFixRecommendation(report.Recommendations))
}

func TestRun_ReleaseNotFound(t *testing.T) {
	clientset := fake.NewClientset(testNode("worker-a", 8))
	runner := &scriptedHelm{
		stderr: map[string]string{"get values": "Error: release: not found"},
		fail:   map[string]bool{"get values": true},
	}

	report, err := newDiagnoser(clientset, &scriptedProber{}, runner).Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, report.HelmAudit)
	assert.False(t, report.HelmAudit.Found)

	found := false
	for _, rec := range report.Recommendations {
		if strings.Contains(rec, "helm install gpu-operator") {
			found = true
		}
	}
	assert.True(t, found)
}

func hasFixRecommendation(recs []string) bool {
	for _, rec := range recs {
		if strings.Contains(rec, "gpuready fix") {
			return true
		}
	}
	return false
}

const validValuesDoc = `
toolkit:
  enabled: true
  image: container-toolkit
  imagePullPolicy: IfNotPresent
  installDir: /usr/local/nvidia
  repository: nvcr.io/nvidia/k8s
  version: v1.17.5-ubuntu20.04
  env:
    - name: CONTAINERD_CONFIG
      value: /var/lib/k8s-containerd/k8s-containerd/etc/containerd/config.toml
    - name: CONTAINERD_SOCKET
      value: /var/lib/k8s-containerd/k8s-containerd/run/containerd/containerd.sock
    - name: CONTAINERD_RUNTIME_CLASS
      value: nvidia
`
