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
	"strings"

	"github.com/NVIDIA/gpu-readiness/pkg/collector"
)

// CandidateConfigPaths is the ordered list of containerd configuration
// locations checked on every node. Multiple candidates may exist on one
// node; the non-standard installation prefix used by bundled k8s-containerd
// packaging is checked first because it shadows the standard path when
// present. Never assume exactly one exists.
var CandidateConfigPaths = []string{
	"/var/lib/k8s-containerd/k8s-containerd/etc/containerd/config.toml",
	"/etc/containerd/config.toml",
	"/var/lib/rancher/k3s/agent/etc/containerd/config.toml",
	"/etc/k3s/containerd/config.toml",
	"/var/lib/containerd/config.toml",
}

// NonStandardPrefix is the installation prefix of the bundled k8s-containerd
// packaging. Helm toolkit env expectations are derived from it.
const NonStandardPrefix = "/var/lib/k8s-containerd/k8s-containerd"

// CandidateBinaryPaths is the ordered list of locations searched for the
// NVIDIA container runtime executable.
var CandidateBinaryPaths = []string{
	"/usr/local/nvidia/toolkit/nvidia-container-runtime",
	"/usr/bin/nvidia-container-runtime",
	"/usr/local/bin/nvidia-container-runtime",
}

// ContainerdConfigFinding records the inspection of one candidate containerd
// configuration path on one node.
type ContainerdConfigFinding struct {
	// Path is the candidate configuration file path (host view, no /host prefix).
	Path string `json:"path" yaml:"path"`

	// Exists is true when the file is present. An empty file still exists;
	// it is reported as "exists, NVIDIA runtime not configured".
	Exists bool `json:"exists" yaml:"exists"`

	// NvidiaRuntimeConfigured is true when the file carries an NVIDIA
	// runtime registration stanza.
	NvidiaRuntimeConfigured bool `json:"nvidiaRuntimeConfigured" yaml:"nvidiaRuntimeConfigured"`

	// BinaryName is the runtime binary path declared in the config, if any.
	BinaryName string `json:"binaryName,omitempty" yaml:"binaryName,omitempty"`

	// BinaryExists is true when BinaryName points at an existing file on
	// the node. Meaningful only when BinaryName is set.
	BinaryExists bool `json:"binaryExists" yaml:"binaryExists"`

	// Excerpt holds the NVIDIA/runtime-related config lines for the report.
	Excerpt []string `json:"excerpt,omitempty" yaml:"excerpt,omitempty"`

	// Error records a read failure for this path. The path is then
	// "could not determine", not "does not exist".
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// BinaryLocation is one candidate runtime binary location probed on a node.
type BinaryLocation struct {
	Path       string `json:"path" yaml:"path"`
	Executable bool   `json:"executable" yaml:"executable"`
}

// RuntimeBinaryFinding is the ordered set of locations where an NVIDIA
// container runtime executable was found.
type RuntimeBinaryFinding struct {
	Locations []BinaryLocation `json:"locations" yaml:"locations"`

	// Error records a probe failure; the finding is then "could not
	// determine" rather than "not found".
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// LogErrorFinding holds recent container-runtime error log lines for a node,
// bounded by the configured lookback window.
type LogErrorFinding struct {
	// Lines are journal lines matching runtime-failure signatures.
	Lines []string `json:"lines,omitempty" yaml:"lines,omitempty"`

	// Collected is false when the journal could not be read; Lines empty
	// with Collected true means "no errors found".
	Collected bool `json:"collected" yaml:"collected"`

	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// NodeReport owns all inspection findings for one node.
type NodeReport struct {
	Node collector.NodeInfo `json:"node" yaml:"node"`

	ContainerdConfigs []ContainerdConfigFinding `json:"containerdConfigs,omitempty" yaml:"containerdConfigs,omitempty"`
	RuntimeBinary     RuntimeBinaryFinding      `json:"runtimeBinary" yaml:"runtimeBinary"`
	LogErrors         LogErrorFinding           `json:"logErrors" yaml:"logErrors"`

	// Devices lists NVIDIA device nodes present under /dev.
	Devices []string `json:"devices,omitempty" yaml:"devices,omitempty"`

	// ContainerdUnitState is the systemd ActiveState/SubState of the
	// containerd unit, populated in local mode only.
	ContainerdUnitState string `json:"containerdUnitState,omitempty" yaml:"containerdUnitState,omitempty"`

	// Error records a node-level inspection failure (e.g. probe never
	// ready). A report with Error set has no meaningful findings.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// ErrorCode classifies Error for programmatic handling.
	ErrorCode string `json:"errorCode,omitempty" yaml:"errorCode,omitempty"`
}

// HasNvidiaRuntime reports whether any existing config on the node carries
// an NVIDIA runtime stanza.
func (r *NodeReport) HasNvidiaRuntime() bool {
	for _, c := range r.ContainerdConfigs {
		if c.Exists && c.NvidiaRuntimeConfigured {
			return true
		}
	}
	return false
}

// MissingBinaries returns configs that declare a runtime binary which does
// not exist on the node.
func (r *NodeReport) MissingBinaries() []ContainerdConfigFinding {
	var missing []ContainerdConfigFinding
	for _, c := range r.ContainerdConfigs {
		if c.NvidiaRuntimeConfigured && c.BinaryName != "" && !c.BinaryExists {
			missing = append(missing, c)
		}
	}
	return missing
}

// DetectInstallPrefix derives the containerd installation prefix from the
// configs found across the cluster. The first existing config under a
// prefixed <prefix>/etc/containerd/config.toml path wins; with no prefixed
// config found, the bundled packaging prefix remains the remediation
// target, since the diagnosed defect class is precisely the
// standard/non-standard split.
func DetectInstallPrefix(reports []*NodeReport) string {
	const standardSuffix = "/etc/containerd/config.toml"
	for _, r := range reports {
		for _, c := range r.ContainerdConfigs {
			if !c.Exists || !strings.HasSuffix(c.Path, standardSuffix) {
				continue
			}
			if prefix := strings.TrimSuffix(c.Path, standardSuffix); prefix != "" {
				return prefix
			}
		}
	}
	return NonStandardPrefix
}
