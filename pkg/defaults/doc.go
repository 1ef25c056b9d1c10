// Package defaults centralizes timeout, rate-limit, and concurrency
// constants used across the gpuready tool.
//
// Keeping these values in one place makes operational tuning auditable and
// prevents magic numbers from drifting between packages.
package defaults
