// Package logging assembles structured slog loggers and formatting helpers used
// across the pipeline and CLI.
//
// It owns the console/JSON handlers, centralizes level and output plumbing, and
// exposes context-aware helpers so stage code can tag log lines with run IDs,
// stages, and analyzer names. The package also provides a no-op logger for
// tests and library callers.
package logging
