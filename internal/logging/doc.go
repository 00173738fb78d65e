// Package logging assembles structured slog loggers and formatting helpers used
// across tscproj commands.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with run IDs and project paths. Log output goes to stderr so command
// results on stdout stay machine-readable. The package also provides a no-op
// logger for tests and library callers that pass nil.
package logging
