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
	"time"

	"github.com/NVIDIA/gpu-readiness/pkg/k8s/probe"
)

// scanJournal reads recent containerd journal entries through the host root
// and keeps lines that look like container-runtime failures. Absence of
// matching lines is a positive "no errors" result only when the journal was
// actually readable.
func scanJournal(ctx context.Context, ex probe.Executor, lookback time.Duration) LogErrorFinding {
	finding := LogErrorFinding{}

	res, err := ex.Exec(ctx,
		"chroot", "/host", "journalctl", "-u", "containerd",
		"--since", journalSince(lookback), "--no-pager", "-q")
	stdout, ok, execErr := execOutcome(res, err)
	if execErr != nil {
		finding.Error = fmt.Sprintf("failed to read containerd journal: %v", execErr)
		return finding
	}
	if !ok {
		stderr := ""
		if res != nil {
			stderr = strings.TrimSpace(res.Stderr)
		}
		finding.Error = fmt.Sprintf("journalctl exited non-zero: %s", stderr)
		return finding
	}

	finding.Collected = true
	finding.Lines = filterRuntimeErrors(stdout)
	return finding
}

// journalSince renders the lookback window in journalctl's relative form,
// e.g. "1 hour ago" or "30 minutes ago".
func journalSince(lookback time.Duration) string {
	if lookback >= time.Hour && lookback%time.Hour == 0 {
		hours := int(lookback / time.Hour)
		unit := "hours"
		if hours == 1 {
			unit = "hour"
		}
		return fmt.Sprintf("%d %s ago", hours, unit)
	}
	minutes := int(lookback / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	unit := "minutes"
	if minutes == 1 {
		unit = "minute"
	}
	return fmt.Sprintf("%d %s ago", minutes, unit)
}

// filterRuntimeErrors keeps journal lines carrying both an error marker and
// an NVIDIA or runtime reference.
func filterRuntimeErrors(output string) []string {
	var lines []string
	for _, line := range strings.Split(output, "\n") {
		lower := strings.ToLower(line)
		if !strings.Contains(lower, "error") {
			continue
		}
		if !strings.Contains(lower, "nvidia") && !strings.Contains(lower, "runtime") {
			continue
		}
		lines = append(lines, strings.TrimSpace(line))
	}
	return lines
}
