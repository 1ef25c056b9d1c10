/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/gpu-readiness/pkg/helm"
)

func fixCmd() *cli.Command {
	return &cli.Command{
		Name:                  "fix",
		EnableShellCompletion: true,
		Usage:                 "Remediate the GPU operator Helm toolkit configuration",
		Description: `Merge a known-good values fragment over the deployed GPU operator
release values and apply the result with helm upgrade.

The merge is conservative: keys present in the fragment win, everything
else in the deployed values is preserved untouched. The merged document is
always written to disk so it can be reviewed and version-controlled.

# Examples

Review the merged values without applying them:
  gpuready fix --dry-run

Apply the fix to a specific release:
  gpuready fix --release gpu-operator-1758912452

Use a custom fragment:
  gpuready fix --values my-fix-values.yaml`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "values",
				Aliases: []string{"f"},
				Usage:   "Path to the known-good values fragment",
				Sources: cli.EnvVars("GPUREADY_FIX_VALUES"),
				Value:   helm.DefaultFragmentPath,
			},
			&cli.StringFlag{
				Name:  "merged-output",
				Usage: "Path for the merged values document",
				Value: helm.DefaultMergedPath,
			},
			&cli.StringFlag{
				Name:  "chart",
				Usage: "Chart reference for helm upgrade",
				Value: helm.DefaultChart,
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Write the merged values and stop without applying",
			},
			releaseFlag,
			namespaceFlag,
		},
		Action: fixAction,
	}
}

func fixAction(ctx context.Context, cmd *cli.Command) error {
	r := &helm.Remediator{
		Client:       helm.NewClient(cmd.String("release"), cmd.String("namespace")),
		FragmentPath: cmd.String("values"),
		MergedPath:   cmd.String("merged-output"),
		Chart:        cmd.String("chart"),
		DryRun:       cmd.Bool("dry-run"),
	}

	outcome, err := r.Run(ctx)
	if err != nil {
		return err
	}

	if outcome.Applied {
		fmt.Printf("Applied merged values to release %s (merged document: %s)\n",
			outcome.Release, outcome.MergedPath)
	} else {
		fmt.Printf("Dry run: merged values written to %s; review and re-run without --dry-run to apply\n",
			outcome.MergedPath)
	}
	return nil
}
