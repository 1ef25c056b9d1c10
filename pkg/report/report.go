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

package report

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/NVIDIA/gpu-readiness/pkg/diagnoser"
	"github.com/NVIDIA/gpu-readiness/pkg/inspector"
)

const divider = "================================================================"

var titleCaser = cases.Title(language.English, cases.NoLower)

// Render formats the report as text. Output is deterministic for a given
// report value.
func Render(r *diagnoser.ClusterReport) string {
	var b strings.Builder

	header(&b, r)
	pendingPodsSection(&b, r)
	summarySection(&b, r)
	daemonSetSection(&b, r)
	helmSection(&b, r)
	nodeSections(&b, r)
	recommendationsSection(&b, r)

	return b.String()
}

func section(b *strings.Builder, name string) {
	fmt.Fprintf(b, "\n%s\n%s\n", titleCaser.String(name), strings.Repeat("-", len(name)))
}

func header(b *strings.Builder, r *diagnoser.ClusterReport) {
	fmt.Fprintln(b, divider)
	fmt.Fprintln(b, "GPU Readiness Report")
	fmt.Fprintln(b, divider)
	if !r.GeneratedAt.IsZero() {
		fmt.Fprintf(b, "Generated: %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	}
	if r.Version != "" {
		fmt.Fprintf(b, "Version:   %s\n", r.Version)
	}
	fmt.Fprintf(b, "Namespace: %s\n", r.Namespace)

	for _, w := range r.Warnings {
		fmt.Fprintf(b, "Warning:   %s\n", w)
	}
}

func summarySection(b *strings.Builder, r *diagnoser.ClusterReport) {
	s := r.Summary
	section(b, "cluster summary")
	fmt.Fprintf(b, "Nodes:                      %d (%d GPU-capable)\n", s.TotalNodes, s.GPUNodes)
	fmt.Fprintf(b, "With containerd config:     %d\n", s.NodesWithConfig)
	fmt.Fprintf(b, "With NVIDIA runtime:        %d\n", s.NodesWithNvidiaRuntime)
	fmt.Fprintf(b, "With missing binary:        %d\n", s.NodesWithMissingBinary)
	fmt.Fprintf(b, "With runtime log errors:    %d\n", s.NodesWithLogErrors)
	if s.NodesFailed > 0 {
		fmt.Fprintf(b, "Not inspected (failed):     %d\n", s.NodesFailed)
	}
}

func pendingPodsSection(b *strings.Builder, r *diagnoser.ClusterReport) {
	section(b, "pending GPU pods")
	if r.GPUPods == nil {
		fmt.Fprintln(b, "Could not determine: pod scan failed.")
		return
	}
	if len(r.GPUPods.Pending) == 0 {
		fmt.Fprintln(b, "None: all GPU-requesting pods are running.")
		return
	}
	for _, p := range r.GPUPods.Pending {
		line := fmt.Sprintf("  %s/%s on %s (%s)", p.Namespace, p.Name, p.Node, p.Phase)
		if p.Reason != "" {
			line += " reason=" + p.Reason
		}
		fmt.Fprintln(b, line)
	}
}

func daemonSetSection(b *strings.Builder, r *diagnoser.ClusterReport) {
	section(b, "GPU operator daemonsets")
	if len(r.DaemonSets) == 0 {
		fmt.Fprintln(b, "Could not determine: DaemonSet status was not collected.")
		return
	}
	for _, ds := range r.DaemonSets {
		switch {
		case ds.Error != "":
			fmt.Fprintf(b, "  %-40s could not determine: %s\n", ds.Name, ds.Error)
		case !ds.Found:
			fmt.Fprintf(b, "  %-40s NOT FOUND\n", ds.Name)
		default:
			fmt.Fprintf(b, "  %-40s %d/%d ready (%d available)\n",
				ds.Name, ds.Ready, ds.Desired, ds.Available)
		}
	}
}

func helmSection(b *strings.Builder, r *diagnoser.ClusterReport) {
	section(b, "helm release audit")
	audit := r.HelmAudit
	switch {
	case audit == nil:
		fmt.Fprintln(b, "Skipped.")
	case audit.Error != "":
		fmt.Fprintf(b, "Could not determine: %s\n", audit.Error)
	case !audit.Found:
		fmt.Fprintf(b, "No GPU operator release found in namespace %s.\n", audit.Namespace)
	case audit.Valid:
		fmt.Fprintf(b, "Release %s: toolkit configuration valid.\n", audit.Release)
		if audit.ToolkitImage != "" {
			fmt.Fprintf(b, "Toolkit image: %s\n", audit.ToolkitImage)
		}
	default:
		fmt.Fprintf(b, "Release %s: %d issue(s):\n", audit.Release, len(audit.Issues))
		for _, issue := range audit.Issues {
			fmt.Fprintf(b, "  - %s\n", issue)
		}
	}
}

func nodeSections(b *strings.Builder, r *diagnoser.ClusterReport) {
	section(b, "nodes")
	for _, n := range r.Nodes {
		nodeSection(b, n, r.GPUPods != nil)
	}
}

func nodeSection(b *strings.Builder, n *inspector.NodeReport, podsKnown bool) {
	caps := []string{}
	if n.Node.GPUCapable {
		caps = append(caps, "GPU")
	}
	if !n.Node.Ready {
		caps = append(caps, "NotReady")
	}
	suffix := ""
	if len(caps) > 0 {
		suffix = " [" + strings.Join(caps, ",") + "]"
	}
	fmt.Fprintf(b, "\n* %s%s roles=%s\n", n.Node.Name, suffix, strings.Join(n.Node.Roles, ","))

	if n.Error != "" {
		fmt.Fprintf(b, "  Could not inspect (%s): %s\n", n.ErrorCode, n.Error)
		return
	}

	if podsKnown {
		fmt.Fprintf(b, "  GPU pods scheduled: %d\n", n.Node.GPUPods)
	}

	for _, c := range n.ContainerdConfigs {
		switch {
		case c.Error != "":
			fmt.Fprintf(b, "  config %s: could not determine: %s\n", c.Path, c.Error)
		case !c.Exists:
			continue
		case !c.NvidiaRuntimeConfigured:
			fmt.Fprintf(b, "  config %s: exists, NVIDIA runtime not configured\n", c.Path)
		default:
			fmt.Fprintf(b, "  config %s: NVIDIA runtime configured\n", c.Path)
			if c.BinaryName != "" {
				state := "present"
				if !c.BinaryExists {
					state = "MISSING"
				}
				fmt.Fprintf(b, "    BinaryName %s (%s)\n", c.BinaryName, state)
			} else {
				fmt.Fprintf(b, "    BinaryName not specified\n")
			}
		}
	}

	switch {
	case n.RuntimeBinary.Error != "":
		fmt.Fprintf(b, "  runtime binary: could not determine: %s\n", n.RuntimeBinary.Error)
	case len(n.RuntimeBinary.Locations) == 0:
		fmt.Fprintln(b, "  runtime binary: not found at any known location")
	default:
		for _, loc := range n.RuntimeBinary.Locations {
			mode := "executable"
			if !loc.Executable {
				mode = "NOT executable"
			}
			fmt.Fprintf(b, "  runtime binary: %s (%s)\n", loc.Path, mode)
		}
	}

	switch {
	case !n.LogErrors.Collected:
		fmt.Fprintf(b, "  containerd journal: could not determine: %s\n", n.LogErrors.Error)
	case len(n.LogErrors.Lines) == 0:
		fmt.Fprintln(b, "  containerd journal: no runtime errors in window")
	default:
		fmt.Fprintf(b, "  containerd journal: %d runtime error(s), most recent:\n", len(n.LogErrors.Lines))
		for _, line := range tail(n.LogErrors.Lines, 3) {
			fmt.Fprintf(b, "    %s\n", line)
		}
	}

	if len(n.Devices) > 0 {
		fmt.Fprintf(b, "  devices: %s\n", strings.Join(n.Devices, " "))
	} else if n.Node.GPUCapable {
		fmt.Fprintln(b, "  devices: no NVIDIA device nodes under /dev")
	}

	if n.ContainerdUnitState != "" {
		fmt.Fprintf(b, "  containerd unit: %s\n", n.ContainerdUnitState)
	}
}

func recommendationsSection(b *strings.Builder, r *diagnoser.ClusterReport) {
	section(b, "recommendations")
	if len(r.Recommendations) == 0 {
		fmt.Fprintln(b, "None: no issues found.")
		return
	}
	for i, rec := range r.Recommendations {
		fmt.Fprintf(b, "%d. %s\n", i+1, rec)
	}
}

func tail(lines []string, n int) []string {
	if len(lines) <= n {
		return lines
	}
	return lines[len(lines)-n:]
}
