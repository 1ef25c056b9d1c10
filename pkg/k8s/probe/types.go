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
	"time"

	"golang.org/x/time/rate"

	"github.com/NVIDIA/gpu-readiness/pkg/defaults"
)

// Executor runs commands against a node and returns the captured result.
// The concrete implementation execs into a transient probe pod; tests
// substitute a fake.
type Executor interface {
	// Exec runs the command and returns captured stdout/stderr and exit
	// status. A non-zero exit returns a Result alongside an
	// EXECUTION_FAILURE error; the Result is still populated.
	Exec(ctx context.Context, command ...string) (*Result, error)
}

// Result captures the output of one command execution.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Config describes the transient probe pod for one node.
type Config struct {
	// NodeName pins the pod to the node under inspection.
	NodeName string

	// Namespace for the probe pod.
	Namespace string

	// Image for the probe container. Needs only a shell and coreutils.
	Image string

	// ReadyTimeout bounds the wait for the pod to reach Running.
	ReadyTimeout time.Duration

	// ExecTimeout is the per-command execution deadline.
	ExecTimeout time.Duration

	// KeepPod skips pod deletion so a failed inspection can be debugged
	// by hand. The pod still expires with its sleep command.
	KeepPod bool
}

// withDefaults fills zero fields from package defaults.
func (c Config) withDefaults() Config {
	if c.Namespace == "" {
		c.Namespace = "kube-system"
	}
	if c.Image == "" {
		c.Image = DefaultImage
	}
	if c.ReadyTimeout == 0 {
		c.ReadyTimeout = defaults.ProbeReadyTimeout
	}
	if c.ExecTimeout == 0 {
		c.ExecTimeout = defaults.ProbeExecTimeout
	}
	return c
}

// DefaultImage is the probe container image.
const DefaultImage = "busybox:1.37"

// NewLimiter returns the shared rate limiter for exec round-trips. All
// probes in one run should share a single limiter so concurrent workers
// stay within a predictable API server request budget.
func NewLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(defaults.ProbeExecRate), defaults.ProbeExecBurst)
}
