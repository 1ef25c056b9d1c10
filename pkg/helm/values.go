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
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/gpu-readiness/pkg/defaults"
	apperrors "github.com/NVIDIA/gpu-readiness/pkg/errors"
)

// DefaultNamespace is the namespace the GPU operator release lives in.
const DefaultNamespace = "gpu-operator"

// Client retrieves and mutates one Helm release.
type Client struct {
	Runner    Runner
	Release   string
	Namespace string
}

// NewClient returns a Client for the release in the namespace, using the
// production helm CLI runner.
func NewClient(release, namespace string) *Client {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Client{
		Runner:    NewRunner(),
		Release:   release,
		Namespace: namespace,
	}
}

// listedRelease is one entry of `helm list -o json`.
type listedRelease struct {
	Name  string `json:"name"`
	Chart string `json:"chart"`
}

// DiscoverRelease finds the GPU operator release in the namespace and sets
// it on the client. Used when no explicit release name was given.
func (c *Client) DiscoverRelease(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaults.HelmGetValuesTimeout)
	defer cancel()

	stdout, stderr, err := c.Runner.Run(ctx, "list", "-n", c.Namespace, "-o", "json")
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeExecutionFailure,
			fmt.Sprintf("helm list failed: %s", strings.TrimSpace(stderr)), err)
	}

	var releases []listedRelease
	if err := json.Unmarshal([]byte(stdout), &releases); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeExecutionFailure,
			"failed to parse helm list output", err)
	}

	for _, r := range releases {
		if strings.Contains(r.Name, "gpu-operator") || strings.Contains(r.Chart, "gpu-operator") {
			c.Release = r.Name
			return nil
		}
	}

	return apperrors.New(apperrors.ErrCodeReleaseNotFound,
		fmt.Sprintf("no GPU operator release in namespace %s", c.Namespace))
}

// GetValues returns the deployed values of the release, including chart
// defaults. A missing release is a RELEASE_NOT_FOUND error.
func (c *Client) GetValues(ctx context.Context) (map[string]any, error) {
	if c.Release == "" {
		if err := c.DiscoverRelease(ctx); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.HelmGetValuesTimeout)
	defer cancel()

	stdout, stderr, err := c.Runner.Run(ctx,
		"get", "values", c.Release, "-n", c.Namespace, "--all", "-o", "yaml")
	if err != nil {
		if strings.Contains(stderr, "not found") {
			return nil, apperrors.Wrap(apperrors.ErrCodeReleaseNotFound,
				fmt.Sprintf("release %s not found in namespace %s", c.Release, c.Namespace), err)
		}
		return nil, apperrors.Wrap(apperrors.ErrCodeExecutionFailure,
			fmt.Sprintf("helm get values failed: %s", strings.TrimSpace(stderr)), err)
	}

	values := map[string]any{}
	if err := yaml.Unmarshal([]byte(stdout), &values); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeExecutionFailure,
			fmt.Sprintf("failed to parse values of release %s", c.Release), err)
	}

	return values, nil
}
