// Package logging assembles structured slog loggers used across chapsplit.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so worker code can tag log
// lines with the run ID and chapter being processed. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
