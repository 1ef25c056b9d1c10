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

package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/tools/remotecommand"
	utilexec "k8s.io/client-go/util/exec"

	apperrors "github.com/NVIDIA/gpu-readiness/pkg/errors"
)

// Exec runs a command inside the probe pod and returns the captured result.
// Each invocation waits on the shared rate limiter and is bounded by the
// configured exec timeout. A non-zero exit status yields an
// EXECUTION_FAILURE error with the populated Result still returned, so
// callers can treat "test -f" style checks as findings rather than failures.
func (p *Probe) Exec(ctx context.Context, command ...string) (*Result, error) {
	if p.podName == "" {
		return nil, apperrors.New(apperrors.ErrCodeInternal, "probe pod not deployed")
	}
	if len(command) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "empty command")
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeTimeout, "rate limiter wait canceled", err)
	}

	execCtx, cancel := context.WithTimeout(ctx, p.config.ExecTimeout)
	defer cancel()

	req := p.clientset.CoreV1().RESTClient().Post().
		Resource("pods").
		Name(p.podName).
		Namespace(p.config.Namespace).
		SubResource("exec").
		VersionedParams(&corev1.PodExecOptions{
			Container: "probe",
			Command:   command,
			Stdout:    true,
			Stderr:    true,
		}, scheme.ParameterCodec)

	executor, err := remotecommand.NewSPDYExecutor(p.restConfig, "POST", req.URL())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeExecutionFailure,
			fmt.Sprintf("failed to create executor for pod %s", p.podName), err)
	}

	var stdout, stderr bytes.Buffer
	streamErr := executor.StreamWithContext(execCtx, remotecommand.StreamOptions{
		Stdout: &stdout,
		Stderr: &stderr,
	})

	res := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if streamErr == nil {
		return res, nil
	}

	// Non-zero exits surface as CodeExitError; capture the code but keep
	// the output usable.
	var exitErr utilexec.CodeExitError
	if errors.As(streamErr, &exitErr) {
		res.ExitCode = exitErr.Code
		return res, apperrors.WrapWithContext(apperrors.ErrCodeExecutionFailure,
			fmt.Sprintf("command %q exited with status %d", command[0], exitErr.Code),
			streamErr,
			map[string]any{"stderr": res.Stderr, "exit": exitErr.Code})
	}

	if execCtx.Err() != nil && ctx.Err() == nil {
		return res, apperrors.Wrap(apperrors.ErrCodeTimeout,
			fmt.Sprintf("command %q timed out after %v", command[0], p.config.ExecTimeout), streamErr)
	}

	return res, apperrors.WrapWithContext(apperrors.ErrCodeExecutionFailure,
		fmt.Sprintf("command %q failed", command[0]),
		streamErr,
		map[string]any{"stderr": res.Stderr})
}

// isNotFound reports whether err is a Kubernetes not-found API error.
func isNotFound(err error) bool {
	return k8serrors.IsNotFound(err)
}
