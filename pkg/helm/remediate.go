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

package helm

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/gpu-readiness/pkg/defaults"
	apperrors "github.com/NVIDIA/gpu-readiness/pkg/errors"
)

// Remediation states, in order of progress.
const (
	StateIdle          = "Idle"
	StateValuesLocated = "ValuesLocated"
	StateValuesMerged  = "ValuesMerged"
	StateDryRunReport  = "DryRunReported"
	StateApplied       = "Applied"
	StateDone          = "Done"
	StateFailed        = "Failed"
)

// Default file locations for the remediation round-trip.
const (
	DefaultFragmentPath = "gpu-operator-fix-values.yaml"
	DefaultMergedPath   = "gpu-operator-merged-values.yaml"

	// DefaultChart is the chart reference used for helm upgrade.
	DefaultChart = "nvidia/gpu-operator"
)

// Remediator drives the fix flow: load the known-good fragment, merge it
// over the live release values, then either report the merged document
// (dry run) or apply it with helm upgrade.
type Remediator struct {
	Client *Client

	// FragmentPath is the known-good values fragment. Empty means
	// DefaultFragmentPath.
	FragmentPath string

	// MergedPath receives the merged document. Empty means
	// DefaultMergedPath.
	MergedPath string

	// Chart for helm upgrade. Empty means DefaultChart.
	Chart string

	// DryRun stops after writing the merged document.
	DryRun bool

	state string
}

// Outcome reports where the remediation ended up.
type Outcome struct {
	State      string `json:"state" yaml:"state"`
	Release    string `json:"release" yaml:"release"`
	MergedPath string `json:"mergedPath" yaml:"mergedPath"`
	Applied    bool   `json:"applied" yaml:"applied"`
}

// State returns the current remediation state.
func (r *Remediator) State() string {
	if r.state == "" {
		return StateIdle
	}
	return r.state
}

// Run executes the remediation. Any failure moves the state to Failed and
// returns the causing error; the Outcome is valid in both cases.
func (r *Remediator) Run(ctx context.Context) (*Outcome, error) {
	fragmentPath := r.FragmentPath
	if fragmentPath == "" {
		fragmentPath = DefaultFragmentPath
	}
	mergedPath := r.MergedPath
	if mergedPath == "" {
		mergedPath = DefaultMergedPath
	}

	outcome := &Outcome{State: StateIdle, MergedPath: mergedPath}
	fail := func(err error) (*Outcome, error) {
		r.state = StateFailed
		outcome.State = StateFailed
		return outcome, err
	}

	fragment, err := LoadFragment(fragmentPath)
	if err != nil {
		return fail(err)
	}
	r.state = StateValuesLocated
	slog.Info("loaded fix values fragment", slog.String("path", fragmentPath))

	live, err := r.Client.GetValues(ctx)
	if err != nil {
		return fail(err)
	}
	outcome.Release = r.Client.Release
	slog.Info("located release values",
		slog.String("release", r.Client.Release),
		slog.String("namespace", r.Client.Namespace))

	merged := Merge(live, fragment)
	data, err := yaml.Marshal(merged)
	if err != nil {
		return fail(apperrors.Wrap(apperrors.ErrCodeInternal,
			"failed to render merged values", err))
	}
	if err := os.WriteFile(mergedPath, data, 0o644); err != nil {
		return fail(apperrors.Wrap(apperrors.ErrCodeInternal,
			fmt.Sprintf("failed to write merged values to %s", mergedPath), err))
	}
	r.state = StateValuesMerged
	slog.Info("wrote merged values", slog.String("path", mergedPath))

	if r.DryRun {
		r.state = StateDryRunReport
		outcome.State = StateDone
		r.state = StateDone
		return outcome, nil
	}

	if err := r.upgrade(ctx, mergedPath); err != nil {
		return fail(err)
	}
	r.state = StateApplied
	outcome.Applied = true
	outcome.State = StateDone
	r.state = StateDone
	return outcome, nil
}

// upgrade applies the merged values. Helm's stderr is surfaced verbatim so
// operators see the real failure.
func (r *Remediator) upgrade(ctx context.Context, mergedPath string) error {
	chart := r.Chart
	if chart == "" {
		chart = DefaultChart
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.HelmUpgradeTimeout)
	defer cancel()

	_, stderr, err := r.Client.Runner.Run(ctx,
		"upgrade", r.Client.Release, chart,
		"-n", r.Client.Namespace,
		"-f", mergedPath)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeExecutionFailure,
			fmt.Sprintf("helm upgrade failed: %s", strings.TrimSpace(stderr)), err)
	}

	slog.Info("applied merged values",
		slog.String("release", r.Client.Release),
		slog.String("chart", chart))
	return nil
}
