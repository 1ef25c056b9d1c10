// Package oci publishes diagnostic report bundles to OCI registries.
//
// An output target of the form oci://registry/repository:tag pushes the
// rendered report files as a single-layer OCI 1.1 artifact using ORAS;
// any other target is treated as a local path.
package oci
