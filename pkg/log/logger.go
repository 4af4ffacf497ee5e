package log

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	treemlErrors "github.com/YuminosukeSato/treeml/pkg/errors"
)

var (
	providerMu      sync.RWMutex
	defaultProvider = NewZerologProvider(os.Stderr, LevelInfo)
	provider        LoggerProvider = defaultProvider
)

func init() {
	treemlErrors.SetZerologWarnFunc(func(w error) {
		GetLoggerWithName("warnings").Warn(w.Error(), w)
	})
}

// SetupLogger sets the level of the default zerolog provider from a name:
// "debug", "info", "warn" or "error".
func SetupLogger(level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	defaultProvider.SetLevel(lvl)
	return nil
}

// ParseLevel converts a level name into a Level.
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, treemlErrors.NewValidationError("log_level", "must be one of debug, info, warn, error", level)
	}
}

// SetOutput redirects the default provider to w as JSON lines.
func SetOutput(w io.Writer) {
	defaultProvider.setWriter(w)
}

// UseConsoleWriter switches the default provider to zerolog's human readable
// console format on w.
func UseConsoleWriter(w io.Writer) {
	defaultProvider.setWriter(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen})
}

// SetProvider replaces the global provider. Passing nil restores the default
// zerolog provider.
func SetProvider(p LoggerProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	if p == nil {
		provider = defaultProvider
		return
	}
	provider = p
}

func currentProvider() LoggerProvider {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider
}

// GetLogger returns the global logger.
func GetLogger() Logger {
	return currentProvider().GetLogger()
}

// GetLoggerWithName returns a global logger tagged with a component name.
func GetLoggerWithName(name string) Logger {
	return currentProvider().GetLoggerWithName(name)
}

// SetLevel sets the minimum level of the global provider.
func SetLevel(level Level) {
	currentProvider().SetLevel(level)
}

// ZerologProvider is a LoggerProvider backed by rs/zerolog. Loggers it hands
// out read its writer and level on every record, so SetOutput and SetLevel
// apply to loggers that already exist.
type ZerologProvider struct {
	mu    sync.RWMutex
	base  zerolog.Logger
	level Level
}

// NewZerologProvider creates a provider writing JSON lines to w.
func NewZerologProvider(w io.Writer, level Level) *ZerologProvider {
	p := &ZerologProvider{level: level}
	p.setWriter(w)
	return p
}

func (p *ZerologProvider) setWriter(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.base = zerolog.New(zerolog.SyncWriter(w)).With().Timestamp().Logger()
}

func (p *ZerologProvider) snapshot() (zerolog.Logger, Level) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.base, p.level
}

// GetLogger implements LoggerProvider.
func (p *ZerologProvider) GetLogger() Logger {
	return &zerologLogger{provider: p}
}

// GetLoggerWithName implements LoggerProvider.
func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	return &zerologLogger{provider: p, fields: []any{ComponentKey, name}}
}

// SetLevel implements LoggerProvider.
func (p *ZerologProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
}

type zerologLogger struct {
	provider *ZerologProvider
	fields   []any
}

func (l *zerologLogger) Debug(msg string, fields ...any) { l.log(LevelDebug, msg, fields) }
func (l *zerologLogger) Info(msg string, fields ...any)  { l.log(LevelInfo, msg, fields) }
func (l *zerologLogger) Warn(msg string, fields ...any)  { l.log(LevelWarn, msg, fields) }
func (l *zerologLogger) Error(msg string, fields ...any) { l.log(LevelError, msg, fields) }

func (l *zerologLogger) With(fields ...any) Logger {
	merged := make([]any, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &zerologLogger{provider: l.provider, fields: merged}
}

func (l *zerologLogger) Enabled(_ context.Context, level Level) bool {
	_, minLevel := l.provider.snapshot()
	return level >= minLevel
}

func (l *zerologLogger) log(level Level, msg string, fields []any) {
	base, minLevel := l.provider.snapshot()
	if level < minLevel {
		return
	}
	e := base.WithLevel(toZerologLevel(level))
	if e == nil {
		return
	}
	if len(l.fields) > 0 {
		e = e.Fields(l.fields)
	}
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			e = appendError(e, err)
			fields = fields[1:]
		}
	}
	if len(fields) > 0 {
		e = e.Fields(fields)
	}
	e.Msg(msg)
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
