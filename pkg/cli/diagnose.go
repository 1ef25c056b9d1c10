/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/gpu-readiness/pkg/collector"
	"github.com/NVIDIA/gpu-readiness/pkg/defaults"
	"github.com/NVIDIA/gpu-readiness/pkg/diagnoser"
	"github.com/NVIDIA/gpu-readiness/pkg/helm"
	"github.com/NVIDIA/gpu-readiness/pkg/inspector"
	"github.com/NVIDIA/gpu-readiness/pkg/k8s/client"
	"github.com/NVIDIA/gpu-readiness/pkg/k8s/probe"
	"github.com/NVIDIA/gpu-readiness/pkg/serializer"
)

func diagnoseCmd() *cli.Command {
	return &cli.Command{
		Name:                  "diagnose",
		EnableShellCompletion: true,
		Usage:                 "Diagnose GPU readiness across all cluster nodes",
		Description: `Run the cluster-wide GPU readiness diagnostic:
  - enumerate nodes and classify GPU capability
  - inspect containerd configuration and NVIDIA runtime binaries on each
    node through a transient privileged probe pod
  - scan recent containerd journal entries for runtime failures
  - check GPU operator DaemonSet rollout status
  - find GPU-requesting pods stuck in non-ready states
  - audit the GPU operator Helm release toolkit configuration

Node inspections run in parallel with a bounded worker pool; one
unreachable node never blocks the rest of the cluster.

# Examples

Diagnose the whole cluster, human-readable report to stdout:
  gpuready diagnose

Machine-readable report to a file:
  gpuready diagnose --format json --output report.json

Publish the report bundle to a registry:
  gpuready diagnose --output oci://ghcr.io/org/gpu-reports:latest

Inspect the local machine only (no cluster access):
  gpuready diagnose --local`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "max-workers",
				Usage:   "Maximum concurrent node inspections",
				Sources: cli.EnvVars("GPUREADY_MAX_WORKERS"),
				Value:   defaults.MaxWorkers,
			},
			&cli.StringFlag{
				Name:    "probe-namespace",
				Usage:   "Namespace for transient probe pods",
				Sources: cli.EnvVars("GPUREADY_PROBE_NAMESPACE"),
				Value:   "kube-system",
			},
			&cli.StringFlag{
				Name:    "probe-image",
				Usage:   "Container image for probe pods",
				Sources: cli.EnvVars("GPUREADY_PROBE_IMAGE"),
				Value:   probe.DefaultImage,
			},
			&cli.StringFlag{
				Name:  "runtime-class",
				Usage: "Expected CONTAINERD_RUNTIME_CLASS value in the toolkit config",
				Value: helm.DefaultRuntimeClass,
			},
			&cli.DurationFlag{
				Name:  "journal-window",
				Usage: "Lookback window for the containerd journal scan",
				Value: defaults.JournalLookback,
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Overall diagnostic deadline",
				Value: defaults.DiagnoseTimeout,
			},
			&cli.BoolFlag{
				Name:  "local",
				Usage: "Inspect the local machine instead of cluster nodes",
			},
			&cli.BoolFlag{
				Name:  "no-cleanup",
				Usage: "Keep probe pods after inspection for debugging",
			},
			&cli.BoolFlag{
				Name:  "skip-helm",
				Usage: "Skip the Helm release audit",
			},
			&cli.BoolFlag{
				Name:  "insecure-tls",
				Usage: "Skip TLS certificate verification for OCI registry output",
			},
			&cli.BoolFlag{
				Name:  "plain-http",
				Usage: "Use HTTP instead of HTTPS for OCI registry output",
			},
			releaseFlag,
			namespaceFlag,
			outputFlag,
			formatFlag,
			kubeconfigFlag,
		},
		Action: diagnoseAction,
	}
}

func diagnoseAction(ctx context.Context, cmd *cli.Command) error {
	outFormat := serializer.Format(cmd.String("format"))
	if outFormat.IsUnknown() {
		return fmt.Errorf("unknown output format: %q", outFormat)
	}

	ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
	defer cancel()

	d := &diagnoser.Diagnoser{
		Version:      version,
		Namespace:    cmd.String("namespace"),
		MaxWorkers:   cmd.Int("max-workers"),
		RuntimeClass: cmd.String("runtime-class"),
		Inspector: &inspector.Inspector{
			Lookback: cmd.Duration("journal-window"),
		},
	}
	if !cmd.Bool("skip-helm") {
		d.Helm = helm.NewClient(cmd.String("release"), cmd.String("namespace"))
	}

	var (
		report *diagnoser.ClusterReport
		err    error
	)
	if cmd.Bool("local") {
		report, err = d.RunLocal(ctx)
	} else {
		clientset, restConfig, buildErr := client.Build(cmd.String("kubeconfig"))
		if buildErr != nil {
			return buildErr
		}
		d.Collector = &collector.Collector{ClientSet: clientset}
		d.Inspector.Prober = inspector.NewPodProber(clientset, restConfig, probe.Config{
			Namespace: cmd.String("probe-namespace"),
			Image:     cmd.String("probe-image"),
			KeepPod:   cmd.Bool("no-cleanup"),
		})
		report, err = d.Run(ctx)
	}
	if err != nil {
		return err
	}

	return writeReport(ctx, report, reportOutput{
		format:      outFormat,
		target:      cmd.String("output"),
		version:     version,
		insecureTLS: cmd.Bool("insecure-tls"),
		plainHTTP:   cmd.Bool("plain-http"),
	})
}

// defaultOCITag tags pushed report bundles when the reference has none.
func defaultOCITag() string {
	if version != versionDefault {
		return version
	}
	return time.Now().UTC().Format("20060102-150405")
}
