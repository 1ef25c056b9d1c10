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

package inspector

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"

	"github.com/NVIDIA/gpu-readiness/pkg/collector"
	"github.com/NVIDIA/gpu-readiness/pkg/defaults"
	apperrors "github.com/NVIDIA/gpu-readiness/pkg/errors"
	"github.com/NVIDIA/gpu-readiness/pkg/k8s/probe"
)

// Prober acquires a command executor for a node, runs fn against it, and
// releases any resources afterwards. The production implementation deploys
// and tears down a probe pod; tests substitute a fake.
type Prober interface {
	WithExecutor(ctx context.Context, nodeName string, fn func(ctx context.Context, ex probe.Executor) error) error
}

// Inspector runs the full node inspection suite through a Prober.
type Inspector struct {
	Prober Prober

	// Lookback bounds the containerd journal scan.
	// Zero means defaults.JournalLookback.
	Lookback time.Duration
}

// Inspect produces the NodeReport for one node. Probe acquisition failure
// yields a report carrying the error; individual check failures are recorded
// on the corresponding finding so the rest of the inspection still runs.
func (i *Inspector) Inspect(ctx context.Context, node collector.NodeInfo) *NodeReport {
	report := &NodeReport{Node: node}

	err := i.Prober.WithExecutor(ctx, node.Name, func(ctx context.Context, ex probe.Executor) error {
		i.inspectWith(ctx, ex, report)
		return nil
	})
	if err != nil {
		report.Error = err.Error()
		report.ErrorCode = string(apperrors.CodeOf(err))
		slog.Warn("node inspection failed",
			slog.String("node", node.Name),
			slog.String("code", report.ErrorCode),
			slog.String("error", report.Error))
	}

	return report
}

// inspectWith runs every check against an already-acquired executor. Checks
// are independent; each records its own failure.
func (i *Inspector) inspectWith(ctx context.Context, ex probe.Executor, report *NodeReport) {
	lookback := i.Lookback
	if lookback == 0 {
		lookback = defaults.JournalLookback
	}

	report.ContainerdConfigs = inspectConfigs(ctx, ex)
	report.RuntimeBinary = inspectBinaries(ctx, ex)
	report.LogErrors = scanJournal(ctx, ex, lookback)
	report.Devices = listDevices(ctx, ex)

	slog.Debug("node inspection complete",
		slog.String("node", report.Node.Name),
		slog.Int("configs", len(report.ContainerdConfigs)),
		slog.Int("binaries", len(report.RuntimeBinary.Locations)),
		slog.Int("logErrors", len(report.LogErrors.Lines)),
		slog.Int("devices", len(report.Devices)))
}

// podProber is the production Prober backed by transient probe pods.
type podProber struct {
	clientset  kubernetes.Interface
	restConfig *rest.Config
	limiter    *rate.Limiter
	base       probe.Config
}

// NewPodProber returns a Prober that deploys a privileged probe pod per
// node. The base config carries namespace, image, and cleanup behavior;
// its NodeName is overridden per call. All probes share one exec rate
// limiter.
func NewPodProber(clientset kubernetes.Interface, restConfig *rest.Config, base probe.Config) Prober {
	return &podProber{
		clientset:  clientset,
		restConfig: restConfig,
		limiter:    probe.NewLimiter(),
		base:       base,
	}
}

func (p *podProber) WithExecutor(ctx context.Context, nodeName string, fn func(ctx context.Context, ex probe.Executor) error) error {
	config := p.base
	config.NodeName = nodeName
	pr := probe.New(p.clientset, p.restConfig, p.limiter, config)
	return probe.WithProbe(ctx, pr, fn)
}

// execOutcome normalizes an Exec call. A result with non-zero exit is a
// command outcome (the thing checked for is absent), not a transport
// failure; anything else with an error means "could not determine".
func execOutcome(res *probe.Result, err error) (stdout string, exitZero bool, execErr error) {
	if err == nil {
		return res.Stdout, true, nil
	}
	if res != nil && res.ExitCode != 0 {
		return res.Stdout, false, nil
	}
	return "", false, err
}
