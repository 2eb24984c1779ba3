// Package logging assembles structured slog loggers used across anonctl.
//
// It owns the console and JSON handlers, level parsing, output plumbing, and
// a tee handler so the CLI can print human-readable lines to the terminal
// while keeping a JSON trail in the log directory. Context helpers attach the
// per-invocation correlation id to every line.
//
// Prefer these constructors over hand-rolled slog setup.
package logging
