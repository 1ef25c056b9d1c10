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
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/gpu-readiness/pkg/collector"
	"github.com/NVIDIA/gpu-readiness/pkg/defaults"
	apperrors "github.com/NVIDIA/gpu-readiness/pkg/errors"
	"github.com/NVIDIA/gpu-readiness/pkg/helm"
	"github.com/NVIDIA/gpu-readiness/pkg/inspector"
)

// Diagnoser runs the full cluster diagnostic.
type Diagnoser struct {
	// Collector retrieves cluster-scope state.
	Collector *collector.Collector

	// Inspector runs per-node inspections.
	Inspector *inspector.Inspector

	// Helm audits the GPU operator release. Nil skips the audit.
	Helm *helm.Client

	// Version stamps the report.
	Version string

	// Namespace the GPU operator is expected in.
	Namespace string

	// MaxWorkers bounds concurrent node inspections.
	// Zero means defaults.MaxWorkers.
	MaxWorkers int

	// RuntimeClass overrides the expected CONTAINERD_RUNTIME_CLASS value.
	RuntimeClass string
}

// Run executes the diagnostic and returns the complete report. Only node
// enumeration failure is fatal; every other failure lands in the report.
func (d *Diagnoser) Run(ctx context.Context) (*ClusterReport, error) {
	start := time.Now()
	defer func() {
		diagnoseDuration.Observe(time.Since(start).Seconds())
	}()

	namespace := d.Namespace
	if namespace == "" {
		namespace = helm.DefaultNamespace
	}

	nodes, err := d.Collector.Nodes(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeClusterUnreachable,
			"failed to enumerate cluster nodes", err)
	}
	slog.Info("starting cluster diagnostic",
		slog.Int("nodes", len(nodes)),
		slog.String("namespace", namespace))

	report := &ClusterReport{
		Version:   d.Version,
		Namespace: namespace,
	}

	var mu sync.Mutex
	byNode := make(map[string]*inspector.NodeReport, len(nodes))

	g, gctx := errgroup.WithContext(ctx)

	// Cluster-scope retrievals run alongside the node pool.
	g.Go(func() error {
		report.DaemonSets = d.Collector.DaemonSetStatuses(gctx, namespace,
			collector.DevicePluginDaemonSet, collector.ToolkitDaemonSet)
		return nil
	})
	g.Go(func() error {
		summary, err := d.Collector.GPUPodSummary(gctx)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("GPU pod scan failed: %v", err))
			return nil
		}
		report.GPUPods = summary
		return nil
	})

	// Per-node inspections through a bounded pool. A node failure is
	// recorded on its report, never returned, so one bad node cannot
	// cancel the others.
	pool, pctx := errgroup.WithContext(gctx)
	maxWorkers := d.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = defaults.MaxWorkers
	}
	pool.SetLimit(maxWorkers)

	for _, node := range nodes {
		pool.Go(func() error {
			nodeStart := time.Now()
			nr := d.Inspector.Inspect(pctx, node)
			nodeInspectionDuration.Observe(time.Since(nodeStart).Seconds())

			status := "success"
			if nr.Error != "" {
				status = "error"
			}
			nodeInspectionsTotal.WithLabelValues(status).Inc()

			mu.Lock()
			byNode[node.Name] = nr
			mu.Unlock()
			return nil
		})
	}
	g.Go(pool.Wait)

	// Full-completion barrier: nothing below reads the report until every
	// retrieval and inspection has finished.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.Nodes = make([]*inspector.NodeReport, 0, len(nodes))
	for _, node := range nodes {
		nr, ok := byNode[node.Name]
		if !ok {
			// Should be unreachable; keep the one-report-per-node
			// guarantee anyway.
			nr = &inspector.NodeReport{
				Node:      node,
				Error:     "inspection produced no result",
				ErrorCode: string(apperrors.ErrCodeInternal),
			}
		}
		if report.GPUPods != nil {
			nr.Node.GPUPods = report.GPUPods.CountByNode[node.Name]
		}
		report.Nodes = append(report.Nodes, nr)
	}

	report.HelmAudit = d.auditRelease(ctx, namespace, report.Nodes)
	report.Summary = summarize(report.Nodes)
	report.Recommendations = recommend(report)
	report.GeneratedAt = time.Now().UTC()

	slog.Info("cluster diagnostic complete",
		slog.Int("nodes", report.Summary.TotalNodes),
		slog.Int("failed", report.Summary.NodesFailed),
		slog.Duration("elapsed", time.Since(start)))
	return report, nil
}

// auditRelease audits the GPU operator release against expectations derived
// from the inspected nodes. Retrieval failures become an audit error or a
// not-found audit, never a run failure.
func (d *Diagnoser) auditRelease(ctx context.Context, namespace string, nodes []*inspector.NodeReport) *helm.Audit {
	if d.Helm == nil {
		return nil
	}

	values, err := d.Helm.GetValues(ctx)
	if err != nil {
		audit := &helm.Audit{
			Release:   d.Helm.Release,
			Namespace: namespace,
		}
		if apperrors.IsCode(err, apperrors.ErrCodeReleaseNotFound) {
			slog.Warn("GPU operator release not found", slog.String("namespace", namespace))
		} else {
			audit.Error = err.Error()
		}
		return audit
	}

	audit := helm.AuditValues(d.Helm.Release, namespace, values, helm.Expectations{
		InstallPrefix: inspector.DetectInstallPrefix(nodes),
		RuntimeClass:  d.RuntimeClass,
	})
	helmAuditIssues.Set(float64(len(audit.Issues)))
	return audit
}
