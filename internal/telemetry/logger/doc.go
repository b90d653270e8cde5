// Package logger provides structured logging for stripedmap tools.
//
// It wraps log/slog:
//
//   - logger.go: handler construction, level control, process default
//   - context.go: context propagation of the logger and the workload run ID
//
// The underlying *slog.Logger is available through Slog so that library
// code taking a plain *slog.Logger (such as stripedmap.WithLogger) writes
// to the same handler.
package logger
