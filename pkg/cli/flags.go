/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/gpu-readiness/pkg/helm"
	"github.com/NVIDIA/gpu-readiness/pkg/serializer"
)

var outputFlag = &cli.StringFlag{
	Name:    "output",
	Aliases: []string{"o"},
	Usage: `Output path (default: stdout).
	For diagnose, also supports OCI references (oci://registry/repository:tag).`,
	Sources: cli.EnvVars("GPUREADY_OUTPUT"),
}

var formatFlag = &cli.StringFlag{
	Name:    "format",
	Aliases: []string{"t"},
	Usage:   "Output format: text, json, yaml",
	Sources: cli.EnvVars("GPUREADY_FORMAT"),
	Value:   string(serializer.FormatText),
}

var kubeconfigFlag = &cli.StringFlag{
	Name:    "kubeconfig",
	Usage:   "Path to kubeconfig (default: $KUBECONFIG, then ~/.kube/config, then in-cluster)",
	Sources: cli.EnvVars("KUBECONFIG"),
}

var namespaceFlag = &cli.StringFlag{
	Name:    "namespace",
	Aliases: []string{"n"},
	Usage:   "Namespace the GPU operator is deployed in",
	Sources: cli.EnvVars("GPUREADY_NAMESPACE"),
	Value:   helm.DefaultNamespace,
}

var releaseFlag = &cli.StringFlag{
	Name:    "release",
	Usage:   "GPU operator Helm release name (default: discovered from the namespace)",
	Sources: cli.EnvVars("GPUREADY_RELEASE"),
}
