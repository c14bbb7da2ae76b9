// Package logger provides structured logging for the tracker.
//
// It utilizes Go's standard library log/slog package: JSON output in
// production, human readable text output with --dev-logging. Loggers travel
// through context.Context so request handlers and background tasks can add
// their own attributes. Every record passes through a handler that strips
// credentials before it is written.
package logger
