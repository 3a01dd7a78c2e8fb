// Package logger provides structured logging functionality for the application.
//
// It uses the standard library log/slog package to emit JSON logs at a
// configurable level, and carries request-scoped loggers through
// context.Context.
package logger
