// Package diagnoser orchestrates the cluster-wide GPU readiness run: it
// enumerates nodes, fans per-node inspections out over a bounded worker
// pool, gathers cluster-scope state once, audits the GPU operator Helm
// release, and assembles everything into a single ClusterReport.
//
// Node failures never abort the run; every node ends up with exactly one
// NodeReport, failed ones carrying the error. The report is complete when
// Run returns.
package diagnoser
