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
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
)

// Runner executes the helm CLI. Tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, args ...string) (stdout, stderr string, err error)
}

// execRunner shells out to the helm binary on PATH.
type execRunner struct{}

// NewRunner returns the production helm CLI runner.
func NewRunner() Runner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, "helm", args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("running helm", slog.String("args", strings.Join(args, " ")))
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}
