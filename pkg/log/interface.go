// Package log provides the structured logging interface used across treeml.
//
// The Logger interface mirrors log/slog so implementations can be swapped; the
// default provider is backed by zerolog. Estimators obtain a named logger and
// attach the standard attribute keys defined in attributes.go:
//
//	logger := log.GetLoggerWithName("ensemble.random_forest").With(
//	    log.ModelNameKey, "RandomForestClassifier",
//	)
//	logger.Debug("fit started",
//	    log.OperationKey, log.OperationFit,
//	    log.SamplesKey, 1000,
//	    log.FeaturesKey, 5,
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// Fields are alternating key-value pairs. Error and Warn accept an error as the
// first field; it is logged under the "error" key together with its stack trace.
type Logger interface {
	// Debug logs detailed diagnostic information, such as per-round boosting loss.
	Debug(msg string, fields ...any)

	// Info logs general operational information.
	Info(msg string, fields ...any)

	// Warn logs a potentially problematic situation.
	Warn(msg string, fields ...any)

	// Error logs an error condition.
	//
	//	logger.Error("fit failed", err, log.OperationKey, log.OperationFit)
	Error(msg string, fields ...any)

	// With returns a Logger that adds fields to every record.
	With(fields ...any) Logger

	// Enabled reports whether records at level would be emitted. Use it to skip
	// computing expensive fields.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider creates and configures loggers.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger tagged with a component name.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum log level for all loggers created by this provider.
	SetLevel(level Level)
}
