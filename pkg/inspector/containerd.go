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
	"fmt"
	"strings"

	"github.com/NVIDIA/gpu-readiness/pkg/k8s/probe"
)

const maxExcerptLines = 8

// inspectConfigs checks every candidate containerd config path on the node.
// All candidates are always checked; a node can carry more than one config
// and the report has to show which one the runtime actually honors.
func inspectConfigs(ctx context.Context, ex probe.Executor) []ContainerdConfigFinding {
	findings := make([]ContainerdConfigFinding, 0, len(CandidateConfigPaths))

	for _, path := range CandidateConfigPaths {
		finding := ContainerdConfigFinding{Path: path}
		hostPath := "/host" + path

		_, exists, err := execOutcome(ex.Exec(ctx, "test", "-f", hostPath))
		if err != nil {
			finding.Error = fmt.Sprintf("failed to check %s: %v", path, err)
			findings = append(findings, finding)
			continue
		}
		finding.Exists = exists
		if !exists {
			findings = append(findings, finding)
			continue
		}

		content, ok, err := execOutcome(ex.Exec(ctx, "cat", hostPath))
		if err != nil {
			finding.Error = fmt.Sprintf("failed to read %s: %v", path, err)
			findings = append(findings, finding)
			continue
		}
		if !ok {
			finding.Error = fmt.Sprintf("failed to read %s: read exited non-zero", path)
			findings = append(findings, finding)
			continue
		}

		analyzeConfig(&finding, content)
		if finding.NvidiaRuntimeConfigured && finding.BinaryName != "" {
			_, binExists, err := execOutcome(ex.Exec(ctx, "test", "-f", "/host"+finding.BinaryName))
			if err != nil {
				finding.Error = fmt.Sprintf("failed to check binary %s: %v", finding.BinaryName, err)
			}
			finding.BinaryExists = binExists
		}

		findings = append(findings, finding)
	}

	return findings
}

// analyzeConfig derives the NVIDIA runtime status, the declared BinaryName,
// and the report excerpt from the config file content. An empty file is a
// valid config without NVIDIA runtime registration.
func analyzeConfig(finding *ContainerdConfigFinding, content string) {
	lower := strings.ToLower(content)
	finding.NvidiaRuntimeConfigured = strings.Contains(lower, "nvidia") && strings.Contains(lower, "runc")
	finding.BinaryName = extractBinaryName(content)
	finding.Excerpt = configExcerpt(content)
}

// extractBinaryName returns the path from the first `BinaryName = "path"`
// line, or "".
func extractBinaryName(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if !strings.Contains(line, "BinaryName") || !strings.Contains(line, "=") {
			continue
		}
		_, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		return strings.Trim(strings.TrimSpace(value), `"'`)
	}
	return ""
}

// configExcerpt keeps the NVIDIA-related lines for the human report.
func configExcerpt(content string) []string {
	var excerpt []string
	for _, line := range strings.Split(content, "\n") {
		if !strings.Contains(strings.ToLower(line), "nvidia") {
			continue
		}
		excerpt = append(excerpt, strings.TrimSpace(line))
		if len(excerpt) == maxExcerptLines {
			break
		}
	}
	return excerpt
}
