/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/gpu-readiness/pkg/logging"
)

const (
	name           = "gpuready"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Run executes the CLI. It is called by main.main() and handles
// SIGINT/SIGTERM for graceful shutdown.
func Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down gracefully...")
		cancel()
	}()

	if err := rootCmd().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cli.Command {
	return &cli.Command{
		Name:    name,
		Version: version,
		Usage:   "Cluster-wide GPU readiness diagnostics for Kubernetes",
		Description: fmt.Sprintf(`gpuready - GPU readiness diagnostics

Version: %s
Commit:  %s
Built:   %s

Diagnoses why GPU workloads fail to schedule or start on Kubernetes nodes:
containerd runtime registration, NVIDIA runtime binaries, GPU operator
DaemonSet rollout, and the operator's Helm toolkit configuration.`, version, commit, date),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
				Value:   "info",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.SetDefaultStructuredLoggerWithLevel(name, version, cmd.String("log-level"))
			slog.Debug("starting",
				slog.String("name", name),
				slog.String("version", version),
				slog.String("commit", commit))
			return ctx, nil
		},
		Commands: []*cli.Command{
			diagnoseCmd(),
			fixCmd(),
		},
	}
}
