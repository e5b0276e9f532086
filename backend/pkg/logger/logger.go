// backend/pkg/logger/logger.go
package logger

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logger used across the scraper.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
	Sync() error
}

// Field is a key-value pair attached to a log entry.
type Field = zap.Field

type zapLogger struct {
	logger *zap.Logger
}

// New creates a JSON logger writing to stderr at the given level.
// Stdout is left alone: it carries the scraper's listing output.
// An unknown level name falls back to warn instead of failing.
func New(level string) (Logger, error) {
	lvl, parseErr := ParseLevel(level)
	if parseErr != nil {
		lvl = zapcore.WarnLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	cfg.Sampling = nil

	z, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}

	l := &zapLogger{logger: z}
	if parseErr != nil {
		l.Warn("unknown log level, using warn", String("level", level))
	}

	return l, nil
}

// NewNop returns a logger that discards everything.
func NewNop() Logger {
	return &zapLogger{logger: zap.NewNop()}
}

// ParseLevel maps a level name to a zap level. An empty name means warn.
func ParseLevel(level string) (zapcore.Level, error) {
	name := strings.ToLower(strings.TrimSpace(level))
	switch name {
	case "":
		return zapcore.WarnLevel, nil
	case "warning":
		name = "warn"
	}

	lvl, err := zapcore.ParseLevel(name)
	if err != nil {
		return zapcore.WarnLevel, fmt.Errorf("unknown log level %q: %w", level, err)
	}
	return lvl, nil
}

// Debug logs a debug message.
func (l *zapLogger) Debug(msg string, fields ...Field) {
	l.logger.Debug(msg, fields...)
}

// Info logs an informational message.
func (l *zapLogger) Info(msg string, fields ...Field) {
	l.logger.Info(msg, fields...)
}

// Warn logs a warning message.
func (l *zapLogger) Warn(msg string, fields ...Field) {
	l.logger.Warn(msg, fields...)
}

// Error logs an error message.
func (l *zapLogger) Error(msg string, fields ...Field) {
	l.logger.Error(msg, fields...)
}

func (l *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{logger: l.logger.With(fields...)}
}

func (l *zapLogger) Sync() error {
	return l.logger.Sync()
}

func String(key, val string) Field {
	return zap.String(key, val)
}

func Int(key string, val int) Field {
	return zap.Int(key, val)
}

func Duration(key string, val time.Duration) Field {
	return zap.Duration(key, val)
}

func Error(err error) Field {
	return zap.Error(err)
}
