// Package logging provides the service's structured logger. It keeps the
// Fields-map call style used across the handlers and repositories while
// delegating encoding and level handling to zap.
package logging

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultLevel = "info"

// Fields carries structured key/value pairs for a single log entry.
type Fields map[string]interface{}

// Logger is a named structured logger.
type Logger struct {
	zl *zap.Logger
}

// New builds a JSON logger for the given service name. An empty or invalid
// level falls back to info.
func New(service, level string) *Logger {
	atom := zap.NewAtomicLevel()
	if err := atom.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil || level == "" {
		_ = atom.UnmarshalText([]byte(defaultLevel))
	}

	encoderCfg := zapcore.EncoderConfig{
		MessageKey:    "message",
		TimeKey:       "timestamp",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "caller",
		StacktraceKey: "stacktrace",
		EncodeTime:    zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel:   zapcore.LowercaseLevelEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}

	cfg := zap.Config{
		Level:             atom,
		Encoding:          "json",
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: true,
		InitialFields:     map[string]interface{}{"service": service},
	}

	zl, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: falling back to no-op logger: %v\n", err)
		zl = zap.NewNop()
	}
	return &Logger{zl: zl}
}

// NewNop returns a logger that discards everything. Used by tests.
func NewNop() *Logger {
	return &Logger{zl: zap.NewNop()}
}

// FromZap wraps an existing zap logger.
func FromZap(zl *zap.Logger) *Logger {
	if zl == nil {
		zl = zap.NewNop()
	}
	return &Logger{zl: zl}
}

// Named returns a child logger for a component, e.g. "cart-service".
func (l *Logger) Named(component string) *Logger {
	return &Logger{zl: l.zap().Named(component)}
}

// With returns a child logger that always carries the given fields.
func (l *Logger) With(fields Fields) *Logger {
	return &Logger{zl: l.zap().With(toZap(fields)...)}
}

func (l *Logger) Debug(msg string, fields ...Fields) { l.zap().Debug(msg, merge(fields)...) }
func (l *Logger) Info(msg string, fields ...Fields)  { l.zap().Info(msg, merge(fields)...) }
func (l *Logger) Warn(msg string, fields ...Fields)  { l.zap().Warn(msg, merge(fields)...) }
func (l *Logger) Error(msg string, fields ...Fields) { l.zap().Error(msg, merge(fields)...) }

// Fatal logs and exits the process.
func (l *Logger) Fatal(msg string, fields ...Fields) { l.zap().Fatal(msg, merge(fields)...) }

// Zap exposes the underlying logger for libraries that want one.
func (l *Logger) Zap() *zap.Logger { return l.zap() }

// Sync flushes buffered entries.
func (l *Logger) Sync() error { return l.zap().Sync() }

func (l *Logger) zap() *zap.Logger {
	if l == nil || l.zl == nil {
		return zap.NewNop()
	}
	return l.zl
}

func merge(fields []Fields) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields[0]))
	for _, f := range fields {
		out = append(out, toZap(f)...)
	}
	return out
}

// toZap sorts keys so entries are stable across runs.
func toZap(fields Fields) []zap.Field {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		switch v := fields[k].(type) {
		case error:
			out = append(out, zap.NamedError(k, v))
		case fmt.Stringer:
			out = append(out, zap.Stringer(k, v))
		default:
			out = append(out, zap.Any(k, v))
		}
	}
	return out
}
