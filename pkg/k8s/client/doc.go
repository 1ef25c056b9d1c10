// Package client constructs Kubernetes clients for the gpuready tool.
//
// It resolves configuration from an explicit kubeconfig path, the KUBECONFIG
// environment variable, the default ~/.kube/config location, or the
// in-cluster service account, in that order. Callers receive a concrete
// clientset plus the rest.Config used to build it (the config is needed for
// SPDY exec against probe pods).
package client
