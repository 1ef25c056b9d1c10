// Package cli implements the command-line interface for the gpuready tool.
//
// # Commands
//
// diagnose - Run the cluster-wide GPU readiness diagnostic:
//
//	gpuready diagnose [--namespace gpu-operator] [--max-workers 5] [--output FILE] [--format text|json|yaml]
//
// Enumerates cluster nodes, inspects the container runtime stack on each
// node through transient probe pods, checks GPU operator DaemonSet rollout,
// scans for stuck GPU pods, and audits the GPU operator Helm release. With
// --local the diagnostic inspects the machine the binary runs on instead.
//
// fix - Remediate the GPU operator Helm configuration:
//
//	gpuready fix [--release NAME] [--values gpu-operator-fix-values.yaml] [--dry-run]
//
// Merges a known-good values fragment over the deployed release values and
// applies the result with helm upgrade. --dry-run writes the merged document
// and stops.
//
// # Global Flags
//
//	--log-level    Logging verbosity: debug, info, warn, error
//	--help, -h     Show command help
//	--version, -v  Show version information
//
// # Output Targets
//
// The --output flag accepts a file path (empty means stdout) or, for
// diagnose, an OCI reference of the form oci://registry/repository:tag to
// publish the report bundle to a registry.
//
// # Exit Codes
//
//	0  Success
//	1  General error (invalid arguments, execution failure)
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/NVIDIA/gpu-readiness/pkg/cli.version=1.0.0'"
package cli
