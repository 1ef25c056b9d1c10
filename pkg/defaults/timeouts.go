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

package defaults

import "time"

// Probe timeouts for transient node probe pods.
const (
	// ProbeReadyTimeout is the maximum wait for a probe pod to reach the
	// Running state before the node is reported as PROBE_NOT_READY.
	ProbeReadyTimeout = 60 * time.Second

	// ProbeExecTimeout is the per-command timeout for exec round-trips
	// inside a probe pod.
	ProbeExecTimeout = 30 * time.Second

	// ProbeCleanupTimeout bounds probe pod deletion. Cleanup uses its own
	// deadline so a canceled run still removes its pods.
	ProbeCleanupTimeout = 30 * time.Second
)

// Kubernetes timeouts for control-plane API operations.
const (
	// K8sListTimeout is the timeout for list operations (nodes, pods, daemonsets).
	K8sListTimeout = 30 * time.Second
)

// Helm timeouts for release-management CLI invocations.
const (
	// HelmGetValuesTimeout bounds `helm get values`.
	HelmGetValuesTimeout = 30 * time.Second

	// HelmUpgradeTimeout bounds `helm upgrade` during remediation.
	HelmUpgradeTimeout = 5 * time.Minute
)

// Diagnostic run configuration.
const (
	// MaxWorkers is the default concurrency bound for per-node inspection.
	// Kept small to avoid overwhelming the control plane with simultaneous
	// probe workloads.
	MaxWorkers = 5

	// JournalLookback is the time window scanned for container-runtime
	// error log lines on each node.
	JournalLookback = time.Hour

	// DiagnoseTimeout is the overall default timeout for a diagnostic run.
	DiagnoseTimeout = 10 * time.Minute
)

// Probe API rate limiting. Exec round-trips share one limiter so concurrent
// node inspections stay within a predictable API server request budget.
const (
	// ProbeExecRate is the sustained exec requests per second across all workers.
	ProbeExecRate = 10

	// ProbeExecBurst is the short-term burst allowance.
	ProbeExecBurst = 20
)
