// Package helm audits and remediates the GPU operator Helm release
// configuration that drives the NVIDIA container toolkit.
//
// The auditor retrieves deployed values through the helm CLI, walks the
// toolkit configuration keys, and reports each deviation as missing or
// incorrect. The remediation engine merges a known-good values fragment
// over the live values and either reports the merged document (dry run)
// or applies it with helm upgrade.
package helm
