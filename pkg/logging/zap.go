package logging

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Format represents the log output format
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Config holds configuration for the zap-backed logger
type Config struct {
	// Level is the minimum level: debug, info, warn, error
	Level string
	// Format is json or text
	Format Format
	// File is the log destination; empty means stderr
	File string
}

// ZapLogger implements Logger on top of go.uber.org/zap
type ZapLogger struct {
	l *zap.Logger
}

// NewZapLogger creates a logger from the given configuration
func NewZapLogger(cfg Config) (*ZapLogger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = "json"
	if cfg.Format == FormatText {
		zc.Encoding = "console"
		zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	zc.OutputPaths = []string{"stderr"}
	if cfg.File != "" {
		zc.OutputPaths = []string{cfg.File}
	}
	zc.DisableStacktrace = true

	l, err := zc.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return &ZapLogger{l: l}, nil
}

// Debug logs a debug message
func (z *ZapLogger) Debug(ctx context.Context, msg string, fields Fields) {
	z.l.Debug(msg, toZap(fields)...)
}

// Info logs an info message
func (z *ZapLogger) Info(ctx context.Context, msg string, fields Fields) {
	z.l.Info(msg, toZap(fields)...)
}

// Warn logs a warning message
func (z *ZapLogger) Warn(ctx context.Context, msg string, fields Fields) {
	z.l.Warn(msg, toZap(fields)...)
}

// Error logs an error message
func (z *ZapLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	zf := toZap(fields)
	if err != nil {
		zf = append(zf, zap.Error(err))
	}
	z.l.Error(msg, zf...)
}

// WithFields returns a logger with additional fields
func (z *ZapLogger) WithFields(fields Fields) Logger {
	return &ZapLogger{l: z.l.With(toZap(fields)...)}
}

// Close flushes buffered entries
func (z *ZapLogger) Close() error {
	// Sync on stderr returns a harmless error on some platforms.
	_ = z.l.Sync()
	return nil
}

func toZap(fields Fields) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}
	return out
}
