// Package errors provides structured error types with classification codes
// for the gpuready diagnostic tool.
//
// Error codes map to the tool's failure taxonomy: cluster-unreachable
// conditions abort a run, probe and command failures are recorded per node,
// and not-found conditions are reported as findings. Use CodeOf or IsCode to
// classify an error anywhere in its wrap chain.
package errors
