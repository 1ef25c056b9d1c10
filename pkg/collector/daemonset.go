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

	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Well-known GPU operator DaemonSet names.
const (
	DevicePluginDaemonSet = "nvidia-device-plugin-daemonset"
	ToolkitDaemonSet      = "nvidia-container-toolkit-daemonset"
)

// DaemonSetStatuses returns the rollout status for each named DaemonSet in
// the namespace. A missing DaemonSet is reported with Found=false rather
// than failing the call; other retrieval errors are recorded per entry.
func (c *Collector) DaemonSetStatuses(ctx context.Context, namespace string, names ...string) []DaemonSetStatus {
	statuses := make([]DaemonSetStatus, 0, len(names))

	for _, name := range names {
		status := DaemonSetStatus{
			Name:      name,
			Namespace: namespace,
		}

		ds, err := c.ClientSet.AppsV1().DaemonSets(namespace).Get(ctx, name, metav1.GetOptions{})
		switch {
		case k8serrors.IsNotFound(err):
			slog.Debug("daemonset not found",
				slog.String("name", name), slog.String("namespace", namespace))
		case err != nil:
			status.Error = err.Error()
		default:
			status.Found = true
			status.Desired = ds.Status.DesiredNumberScheduled
			status.Ready = ds.Status.NumberReady
			status.Available = ds.Status.NumberAvailable
		}

		statuses = append(statuses, status)
	}

	return statuses
}
