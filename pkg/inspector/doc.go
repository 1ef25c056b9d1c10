// Package inspector performs per-node inspection of the container runtime
// stack behind GPU scheduling: candidate containerd configuration files,
// NVIDIA runtime binary locations, recent containerd journal errors, and
// NVIDIA device nodes.
//
// Inspection normally runs through a transient privileged probe pod pinned
// to the node, with host paths mounted under /host. A local mode inspects
// the machine the binary runs on directly, including the containerd systemd
// unit state over D-Bus.
//
// Findings distinguish "checked and absent" from "could not determine":
// a failed check records an error on the finding instead of reporting a
// clean result.
package inspector
