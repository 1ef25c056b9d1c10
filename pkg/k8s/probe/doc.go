// Package probe manages transient privileged pods used to inspect node-local
// state from inside the cluster.
//
// A Probe pins a small sleep pod to one node with the host's /etc, /var,
// /usr, /dev, and /run mounted read-only under /host, then execs commands
// inside it over the Kubernetes exec subresource (SPDY). The
// create → wait-ready → use → delete lifecycle is wrapped by WithProbe,
// which guarantees pod deletion on every exit path including cancellation.
//
// All exec round-trips in a run share one rate limiter so a bounded worker
// pool of probes stays within a predictable API server request budget.
package probe
