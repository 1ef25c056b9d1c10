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
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/utils/ptr"

	"github.com/NVIDIA/gpu-readiness/pkg/defaults"
	apperrors "github.com/NVIDIA/gpu-readiness/pkg/errors"
)

const (
	podNamePrefix = "gpuready-probe"
	appLabel      = "gpuready-probe"
)

// Probe manages one transient privileged pod on a node and execs commands
// inside it. Host paths relevant to container-runtime inspection are mounted
// read-only under /host.
type Probe struct {
	clientset  kubernetes.Interface
	restConfig *rest.Config
	limiter    *rate.Limiter
	config     Config
	podName    string
}

// New creates a Probe for the node described by config. The limiter is
// shared across probes in one run; pass nil to create a private one.
func New(clientset kubernetes.Interface, restConfig *rest.Config, limiter *rate.Limiter, config Config) *Probe {
	if limiter == nil {
		limiter = NewLimiter()
	}
	return &Probe{
		clientset:  clientset,
		restConfig: restConfig,
		limiter:    limiter,
		config:     config.withDefaults(),
	}
}

// PodName returns the generated probe pod name. Empty until Deploy is called.
func (p *Probe) PodName() string {
	return p.podName
}

// WithProbe acquires a probe pod on the node, invokes fn with the ready
// probe, and guarantees pod deletion on every exit path including
// cancellation. Cleanup uses its own deadline so a canceled run still
// removes its pods.
func WithProbe(ctx context.Context, p *Probe, fn func(ctx context.Context, ex Executor) error) error {
	if err := p.Deploy(ctx); err != nil {
		// The pod may have been created but never became ready.
		p.cleanup()
		return err
	}
	defer p.cleanup()
	return fn(ctx, p)
}

// Deploy creates the probe pod and waits for it to reach the Running state.
// Returns a PROBE_NOT_READY error if the pod does not become ready within
// the configured timeout.
func (p *Probe) Deploy(ctx context.Context) error {
	pod := p.buildPod()
	p.podName = pod.Name

	slog.Debug("deploying probe pod",
		slog.String("node", p.config.NodeName),
		slog.String("pod", pod.Name),
		slog.String("namespace", p.config.Namespace))

	if _, err := p.clientset.CoreV1().Pods(p.config.Namespace).
		Create(ctx, pod, metav1.CreateOptions{}); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeExecutionFailure,
			fmt.Sprintf("failed to create probe pod on node %s", p.config.NodeName), err)
	}

	if err := p.waitForReady(ctx); err != nil {
		return err
	}

	return nil
}

// buildPod constructs the privileged probe pod specification. The pod pins
// to the node, sleeps, and mounts the host paths needed for containerd
// config, runtime binary, and journal inspection.
func (p *Probe) buildPod() *corev1.Pod {
	name := fmt.Sprintf("%s-%s", podNamePrefix, uuid.NewString()[:8])

	hostMount := func(volume, path string) (corev1.Volume, corev1.VolumeMount) {
		return corev1.Volume{
				Name: volume,
				VolumeSource: corev1.VolumeSource{
					HostPath: &corev1.HostPathVolumeSource{Path: path},
				},
			}, corev1.VolumeMount{
				Name:      volume,
				MountPath: "/host" + path,
				ReadOnly:  true,
			}
	}

	var volumes []corev1.Volume
	var mounts []corev1.VolumeMount
	for _, path := range []string{"/etc", "/var", "/usr", "/dev", "/run"} {
		v, m := hostMount("host"+strings.ReplaceAll(path, "/", "-"), path)
		volumes = append(volumes, v)
		mounts = append(mounts, m)
	}

	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: p.config.Namespace,
			Labels: map[string]string{
				"app.kubernetes.io/name": appLabel,
				"gpuready/node":          sanitizeLabelValue(p.config.NodeName),
			},
		},
		Spec: corev1.PodSpec{
			NodeName:      p.config.NodeName,
			RestartPolicy: corev1.RestartPolicyNever,
			HostPID:       true,
			HostNetwork:   true,
			HostIPC:       true,
			Tolerations: []corev1.Toleration{
				{Operator: corev1.TolerationOpExists},
			},
			Containers: []corev1.Container{
				{
					Name:    "probe",
					Image:   p.config.Image,
					Command: []string{"/bin/sleep", "300"},
					SecurityContext: &corev1.SecurityContext{
						Privileged: ptr.To(true),
					},
					VolumeMounts: mounts,
				},
			},
			Volumes: volumes,
		},
	}
}

// waitForReady polls the probe pod until it is Running with its container
// ready, the pod fails, or the timeout elapses.
func (p *Probe) waitForReady(ctx context.Context) error {
	err := wait.PollUntilContextTimeout(ctx, 500*time.Millisecond, p.config.ReadyTimeout, true,
		func(ctx context.Context) (bool, error) {
			pod, err := p.clientset.CoreV1().Pods(p.config.Namespace).
				Get(ctx, p.podName, metav1.GetOptions{})
			if err != nil {
				return false, err
			}

			if pod.Status.Phase == corev1.PodFailed {
				return false, fmt.Errorf("probe pod failed: %s", pod.Status.Message)
			}

			if pod.Status.Phase != corev1.PodRunning {
				return false, nil
			}

			for _, cs := range pod.Status.ContainerStatuses {
				if cs.Ready {
					return true, nil
				}
			}
			return false, nil
		},
	)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeProbeNotReady,
			fmt.Sprintf("probe pod on node %s not ready within %v", p.config.NodeName, p.config.ReadyTimeout), err)
	}
	return nil
}

// cleanup deletes the probe pod with a fresh deadline, detached from the
// (possibly canceled) run context.
func (p *Probe) cleanup() {
	if p.podName == "" {
		return
	}

	if p.config.KeepPod {
		slog.Info("keeping probe pod",
			slog.String("pod", p.podName),
			slog.String("namespace", p.config.Namespace))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaults.ProbeCleanupTimeout)
	defer cancel()

	err := p.clientset.CoreV1().Pods(p.config.Namespace).
		Delete(ctx, p.podName, metav1.DeleteOptions{})
	if err != nil && !isNotFound(err) {
		// Leaked probe pods are a defect; make the failure loud in the logs.
		slog.Error("failed to delete probe pod",
			slog.String("pod", p.podName),
			slog.String("namespace", p.config.Namespace),
			slog.String("error", err.Error()))
		return
	}

	slog.Debug("deleted probe pod", slog.String("pod", p.podName))
}

// sanitizeLabelValue makes a node name safe for use as a label value.
func sanitizeLabelValue(s string) string {
	return strings.ReplaceAll(s, ".", "-")
}
