// Package logging assembles structured slog loggers and formatting helpers used
// across merakireboot.
//
// It owns the configurable console/JSON handlers and centralizes level and
// output plumbing. Loggers write to stderr (plus an optional file) so stdout
// stays reserved for the per-device result lines that scripts consume.
// Context-aware helpers tag log lines with the run identifier and network ID.
// The package also provides a no-op logger for tests and wiring code that
// cannot fail.
package logging
