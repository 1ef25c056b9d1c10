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
	"fmt"
	"sort"

	"github.com/distribution/reference"
)

// DefaultRuntimeClass is the runtime class the toolkit registers with
// containerd unless overridden.
const DefaultRuntimeClass = "nvidia"

// Expectations parameterize the audit for the inspected cluster.
type Expectations struct {
	// InstallPrefix is the detected containerd installation prefix; the
	// toolkit env expectations derive from it.
	InstallPrefix string

	// RuntimeClass is the expected CONTAINERD_RUNTIME_CLASS value.
	// Empty means DefaultRuntimeClass.
	RuntimeClass string
}

// RequiredEnv returns the toolkit environment entries the release must
// carry, keyed by name.
func (e Expectations) RequiredEnv() map[string]string {
	runtimeClass := e.RuntimeClass
	if runtimeClass == "" {
		runtimeClass = DefaultRuntimeClass
	}
	return map[string]string{
		"CONTAINERD_CONFIG":        e.InstallPrefix + "/etc/containerd/config.toml",
		"CONTAINERD_SOCKET":        e.InstallPrefix + "/run/containerd/containerd.sock",
		"CONTAINERD_RUNTIME_CLASS": runtimeClass,
	}
}

// requiredToolkitFields are the non-env toolkit values the release must
// match exactly.
var requiredToolkitFields = map[string]any{
	"enabled":         true,
	"image":           "container-toolkit",
	"imagePullPolicy": "IfNotPresent",
	"installDir":      "/usr/local/nvidia",
	"repository":      "nvcr.io/nvidia/k8s",
	"version":         "v1.17.5-ubuntu20.04",
}

// Issue is one audit deviation. Missing distinguishes an absent key from a
// present key with the wrong value.
type Issue struct {
	Key      string `json:"key" yaml:"key"`
	Expected string `json:"expected" yaml:"expected"`
	Actual   string `json:"actual,omitempty" yaml:"actual,omitempty"`
	Missing  bool   `json:"missing" yaml:"missing"`
}

func (i Issue) String() string {
	if i.Missing {
		return fmt.Sprintf("%s missing (expected %q)", i.Key, i.Expected)
	}
	return fmt.Sprintf("%s is %q, expected %q", i.Key, i.Actual, i.Expected)
}

// Audit is the result of checking one release's toolkit configuration.
type Audit struct {
	Release   string `json:"release" yaml:"release"`
	Namespace string `json:"namespace" yaml:"namespace"`

	// Found is false when no GPU operator release exists; the remaining
	// fields are then meaningless.
	Found bool `json:"found" yaml:"found"`

	// Valid is true when every required key matched.
	Valid  bool    `json:"valid" yaml:"valid"`
	Issues []Issue `json:"issues,omitempty" yaml:"issues,omitempty"`

	// ToolkitImage is the image reference composed from the toolkit
	// repository, image, and version values.
	ToolkitImage string `json:"toolkitImage,omitempty" yaml:"toolkitImage,omitempty"`

	// Error records a retrieval failure; the audit is then "could not
	// determine", not "invalid".
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// AuditValues checks the deployed values against the expectations. Issues
// come out sorted by key so reports are deterministic.
func AuditValues(release, namespace string, values map[string]any, exp Expectations) *Audit {
	audit := &Audit{
		Release:   release,
		Namespace: namespace,
		Found:     true,
		Valid:     true,
	}

	toolkit, _ := values["toolkit"].(map[string]any)
	if toolkit == nil {
		toolkit = map[string]any{}
	}

	for key, expected := range requiredToolkitFields {
		actual, present := toolkit[key]
		if !present {
			audit.addIssue(Issue{
				Key:      "toolkit." + key,
				Expected: fmt.Sprintf("%v", expected),
				Missing:  true,
			})
			continue
		}
		if actual != expected {
			audit.addIssue(Issue{
				Key:      "toolkit." + key,
				Expected: fmt.Sprintf("%v", expected),
				Actual:   fmt.Sprintf("%v", actual),
			})
		}
	}

	auditEnv(audit, toolkit, exp.RequiredEnv())
	auditImage(audit, toolkit)

	sort.Slice(audit.Issues, func(i, j int) bool {
		return audit.Issues[i].Key < audit.Issues[j].Key
	})
	return audit
}

// auditEnv checks the toolkit.env list for the required entries.
func auditEnv(audit *Audit, toolkit map[string]any, required map[string]string) {
	envList, _ := toolkit["env"].([]any)

	actual := map[string]string{}
	for _, entry := range envList {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		name, _ := m["name"].(string)
		value := fmt.Sprintf("%v", m["value"])
		if name != "" {
			actual[name] = value
		}
	}

	for name, expected := range required {
		value, present := actual[name]
		switch {
		case !present:
			audit.addIssue(Issue{
				Key:      "toolkit.env." + name,
				Expected: expected,
				Missing:  true,
			})
		case value != expected:
			audit.addIssue(Issue{
				Key:      "toolkit.env." + name,
				Expected: expected,
				Actual:   value,
			})
		}
	}
}

// auditImage composes the toolkit image reference and validates it parses
// as a well-formed tagged reference.
func auditImage(audit *Audit, toolkit map[string]any) {
	repo, _ := toolkit["repository"].(string)
	image, _ := toolkit["image"].(string)
	version, _ := toolkit["version"].(string)
	if repo == "" || image == "" || version == "" {
		return
	}

	ref := fmt.Sprintf("%s/%s:%s", repo, image, version)
	audit.ToolkitImage = ref

	if _, err := reference.ParseNormalizedNamed(ref); err != nil {
		audit.addIssue(Issue{
			Key:      "toolkit image reference",
			Expected: "valid image reference",
			Actual:   ref,
		})
	}
}

func (a *Audit) addIssue(issue Issue) {
	a.Issues = append(a.Issues, issue)
	a.Valid = false
}
