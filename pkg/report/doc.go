// Package report renders a ClusterReport as deterministic human-readable
// text. Rendering is pure: the same report always produces the same output,
// and the report is never mutated.
package report
