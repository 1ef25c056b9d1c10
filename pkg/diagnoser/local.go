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
	"log/slog"
	"time"

	"github.com/NVIDIA/gpu-readiness/pkg/helm"
	"github.com/NVIDIA/gpu-readiness/pkg/inspector"
)

// RunLocal diagnoses the machine the binary runs on, without cluster
// access or probe pods. The Helm audit still runs when a client is set,
// since helm works from the node too.
func (d *Diagnoser) RunLocal(ctx context.Context) (*ClusterReport, error) {
	namespace := d.Namespace
	if namespace == "" {
		namespace = helm.DefaultNamespace
	}

	slog.Info("starting local node diagnostic", slog.String("namespace", namespace))

	local := &inspector.LocalInspector{}
	if d.Inspector != nil {
		local.Lookback = d.Inspector.Lookback
	}
	nr := local.Inspect(ctx)

	report := &ClusterReport{
		Version:   d.Version,
		Namespace: namespace,
		Nodes:     []*inspector.NodeReport{nr},
	}
	report.HelmAudit = d.auditRelease(ctx, namespace, report.Nodes)
	report.Summary = summarize(report.Nodes)
	report.Recommendations = recommend(report)
	report.GeneratedAt = time.Now().UTC()
	return report, nil
}
