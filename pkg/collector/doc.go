// Package collector retrieves cluster-scope state for the GPU readiness
// diagnostic: node enumeration, GPU operator DaemonSet rollout status, and
// a cluster-wide scan for GPU-requesting pods stuck in non-ready states.
//
// Only node enumeration failure is fatal to a run (the control plane is
// unreachable); every other retrieval failure is recorded as a finding.
package collector
