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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	diagnoseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gpuready_diagnose_duration_seconds",
			Help:    "Time taken for a complete cluster diagnostic run",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 600},
		},
	)

	nodeInspectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gpuready_node_inspections_total",
			Help: "Total number of node inspections",
		},
		[]string{"status"}, // success or error
	)

	nodeInspectionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gpuready_node_inspection_duration_seconds",
			Help:    "Time taken to inspect one node",
			Buckets: []float64{1, 5, 10, 30, 60, 120},
		},
	)

	helmAuditIssues = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gpuready_helm_audit_issues",
			Help: "Number of issues found in the last Helm release audit",
		},
	)
)
