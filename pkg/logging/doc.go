// Package logging provides structured logging utilities for the gpuready tool.
//
// It wraps the standard library slog package with project defaults: JSON
// output to stderr, module/version context on every record, and log level
// configuration through the LOG_LEVEL environment variable or an explicit
// --log-level flag.
//
// Usage:
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("gpuready", version)
//	    slog.Info("starting", "nodes", 12)
//	}
//
// Supported levels (case-insensitive): debug, info (default), warn, error.
// Debug level adds source location to each record.
package logging
