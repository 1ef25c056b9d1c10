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
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/coreos/go-systemd/v22/dbus"

	"github.com/NVIDIA/gpu-readiness/pkg/collector"
	"github.com/NVIDIA/gpu-readiness/pkg/defaults"
)

const containerdUnit = "containerd.service"

// LocalInspector inspects the machine the binary runs on, without a cluster
// or probe pods. Paths are read directly, the journal through journalctl,
// and the containerd unit state over the systemd D-Bus API.
type LocalInspector struct {
	// Lookback bounds the containerd journal scan.
	// Zero means defaults.JournalLookback.
	Lookback time.Duration
}

// Inspect produces a NodeReport for the local machine. The node name is the
// hostname; cluster-derived NodeInfo fields stay zero.
func (l *LocalInspector) Inspect(ctx context.Context) *NodeReport {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	lookback := l.Lookback
	if lookback == 0 {
		lookback = defaults.JournalLookback
	}

	report := &NodeReport{
		Node: collector.NodeInfo{Name: hostname},
	}
	report.ContainerdConfigs = localConfigs()
	report.RuntimeBinary = localBinaries()
	report.LogErrors = localJournal(ctx, lookback)
	report.Devices = localDevices()
	report.ContainerdUnitState = localUnitState(ctx)
	return report
}

func localConfigs() []ContainerdConfigFinding {
	findings := make([]ContainerdConfigFinding, 0, len(CandidateConfigPaths))

	for _, path := range CandidateConfigPaths {
		finding := ContainerdConfigFinding{Path: path}

		info, err := os.Stat(path)
		switch {
		case err == nil && !info.IsDir():
			finding.Exists = true
		case os.IsNotExist(err):
			findings = append(findings, finding)
			continue
		case err != nil:
			finding.Error = fmt.Sprintf("failed to check %s: %v", path, err)
			findings = append(findings, finding)
			continue
		}

		content, err := os.ReadFile(path)
		if err != nil {
			finding.Error = fmt.Sprintf("failed to read %s: %v", path, err)
			findings = append(findings, finding)
			continue
		}

		analyzeConfig(&finding, string(content))
		if finding.NvidiaRuntimeConfigured && finding.BinaryName != "" {
			if _, err := os.Stat(finding.BinaryName); err == nil {
				finding.BinaryExists = true
			}
		}
		findings = append(findings, finding)
	}

	return findings
}

func localBinaries() RuntimeBinaryFinding {
	finding := RuntimeBinaryFinding{Locations: []BinaryLocation{}}

	for _, path := range CandidateBinaryPaths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		finding.Locations = append(finding.Locations, BinaryLocation{
			Path:       path,
			Executable: info.Mode().Perm()&0o111 != 0,
		})
	}

	return finding
}

func localJournal(ctx context.Context, lookback time.Duration) LogErrorFinding {
	finding := LogErrorFinding{}

	cmd := exec.CommandContext(ctx, "journalctl", "-u", "containerd",
		"--since", journalSince(lookback), "--no-pager", "-q")
	out, err := cmd.Output()
	if err != nil {
		finding.Error = fmt.Sprintf("failed to read containerd journal: %v", err)
		return finding
	}

	finding.Collected = true
	finding.Lines = filterRuntimeErrors(string(out))
	return finding
}

func localDevices() []string {
	entries, err := os.ReadDir("/dev")
	if err != nil {
		return nil
	}

	var devices []string
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "nvidia") {
			devices = append(devices, "/dev/"+entry.Name())
		}
	}
	sort.Strings(devices)
	return devices
}

// localUnitState reports the containerd unit state as "active (running)",
// or "" when systemd is not reachable.
func localUnitState(ctx context.Context) string {
	conn, err := dbus.NewSystemdConnectionContext(ctx)
	if err != nil {
		return ""
	}
	defer conn.Close()

	props, err := conn.GetUnitPropertiesContext(ctx, containerdUnit)
	if err != nil {
		return ""
	}

	active, _ := props["ActiveState"].(string)
	sub, _ := props["SubState"].(string)
	if active == "" {
		return ""
	}
	if sub == "" {
		return active
	}
	return fmt.Sprintf("%s (%s)", active, sub)
}
