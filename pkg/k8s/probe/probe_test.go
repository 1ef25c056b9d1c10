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

package probe

import (
	"context"
	"strings"
	"testing"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"

	apperrors "github.com/NVIDIA/gpu-readiness/pkg/errors"
)

func testConfig(node string) Config {
	return Config{
		NodeName:     node,
		Namespace:    "kube-system",
		ReadyTimeout: 2 * time.Second,
	}
}

func TestBuildPod(t *testing.T) {
	p := New(fake.NewClientset(), nil, nil, testConfig("worker-1.example.com"))
	pod := p.buildPod()

	if pod.Spec.NodeName != "worker-1.example.com" {
		t.Errorf("expected pod pinned to node, got %q", pod.Spec.NodeName)
	}
	if !strings.HasPrefix(pod.Name, podNamePrefix) {
		t.Errorf("unexpected pod name %q", pod.Name)
	}
	if !pod.Spec.HostPID {
		t.Error("expected hostPID")
	}
	if pod.Spec.Containers[0].SecurityContext.Privileged == nil ||
		!*pod.Spec.Containers[0].SecurityContext.Privileged {
		t.Error("expected privileged container")
	}
	if len(pod.Spec.Tolerations) != 1 || pod.Spec.Tolerations[0].Operator != corev1.TolerationOpExists {
		t.Errorf("expected tolerate-all, got %v", pod.Spec.Tolerations)
	}
	if pod.Labels["gpuready/node"] != "worker-1-example-com" {
		t.Errorf("expected sanitized node label, got %q", pod.Labels["gpuready/node"])
	}

	// All host mounts must be read-only.
	for _, m := range pod.Spec.Containers[0].VolumeMounts {
		if !m.ReadOnly {
			t.Errorf("mount %s must be read-only", m.MountPath)
		}
		if !strings.HasPrefix(m.MountPath, "/host/") {
			t.Errorf("mount %s must live under /host", m.MountPath)
		}
	}
}

func TestBuildPod_UniqueNames(t *testing.T) {
	p := New(fake.NewClientset(), nil, nil, testConfig("worker-1"))
	a := p.buildPod().Name
	b := p.buildPod().Name
	if a == b {
		t.Errorf("expected unique pod names, got %q twice", a)
	}
}

func TestDeploy_PodBecomesReady(t *testing.T) {
	clientset := fake.NewClientset()

	// Report every pod as running and ready when fetched.
	clientset.PrependReactor("get", "pods",
		func(action k8stesting.Action) (bool, runtime.Object, error) {
			name := action.(k8stesting.GetAction).GetName()
			return true, &corev1.Pod{
				ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: "kube-system"},
				Status: corev1.PodStatus{
					Phase:             corev1.PodRunning,
					ContainerStatuses: []corev1.ContainerStatus{{Ready: true}},
				},
			}, nil
		})

	p := New(clientset, nil, nil, testConfig("worker-1"))
	if err := p.Deploy(context.Background()); err != nil {
		t.Fatalf("Deploy() error: %v", err)
	}
	if p.PodName() == "" {
		t.Error("expected pod name to be recorded")
	}
}

func TestDeploy_NeverReady(t *testing.T) {
	clientset := fake.NewClientset()

	// Pods stay Pending forever; Deploy must fail with PROBE_NOT_READY.
	clientset.PrependReactor("get", "pods",
		func(action k8stesting.Action) (bool, runtime.Object, error) {
			name := action.(k8stesting.GetAction).GetName()
			return true, &corev1.Pod{
				ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: "kube-system"},
				Status:     corev1.PodStatus{Phase: corev1.PodPending},
			}, nil
		})

	cfg := testConfig("worker-1")
	cfg.ReadyTimeout = 100 * time.Millisecond
	p := New(clientset, nil, nil, cfg)

	err := p.Deploy(context.Background())
	if err == nil {
		t.Fatal("expected error for pod that never becomes ready")
	}
	if !apperrors.IsCode(err, apperrors.ErrCodeProbeNotReady) {
		t.Errorf("expected PROBE_NOT_READY, got %v", err)
	}
}

func TestWithProbe_CleansUpOnError(t *testing.T) {
	clientset := fake.NewClientset()
	clientset.PrependReactor("get", "pods",
		func(action k8stesting.Action) (bool, runtime.Object, error) {
			name := action.(k8stesting.GetAction).GetName()
			return true, &corev1.Pod{
				ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: "kube-system"},
				Status: corev1.PodStatus{
					Phase:             corev1.PodRunning,
					ContainerStatuses: []corev1.ContainerStatus{{Ready: true}},
				},
			}, nil
		})

	var deleted bool
	clientset.PrependReactor("delete", "pods",
		func(action k8stesting.Action) (bool, runtime.Object, error) {
			deleted = true
			return false, nil, nil
		})

	p := New(clientset, nil, nil, testConfig("worker-1"))
	callErr := apperrors.New(apperrors.ErrCodeExecutionFailure, "inspection failed")

	err := WithProbe(context.Background(), p, func(ctx context.Context, ex Executor) error {
		return callErr
	})
	if err != callErr {
		t.Errorf("expected inspection error to propagate, got %v", err)
	}
	if !deleted {
		t.Error("expected probe pod deletion after failed inspection")
	}
}

func TestExec_RequiresDeployedPod(t *testing.T) {
	p := New(fake.NewClientset(), nil, nil, testConfig("worker-1"))
	_, err := p.Exec(context.Background(), "true")
	if !apperrors.IsCode(err, apperrors.ErrCodeInternal) {
		t.Errorf("expected INTERNAL for undeployed probe, got %v", err)
	}
}
