package logging

import (
	"context"
)

// NullLogger discards all log entries
type NullLogger struct{}

// NewNullLogger creates a logger that does nothing
func NewNullLogger() *NullLogger {
	return &NullLogger{}
}

func (n *NullLogger) Debug(ctx context.Context, msg string, fields Fields)            {}
func (n *NullLogger) Info(ctx context.Context, msg string, fields Fields)             {}
func (n *NullLogger) Warn(ctx context.Context, msg string, fields Fields)             {}
func (n *NullLogger) Error(ctx context.Context, msg string, err error, fields Fields) {}

// WithFields returns the logger unchanged
func (n *NullLogger) WithFields(fields Fields) Logger { return n }

// Close is a no-op
func (n *NullLogger) Close() error { return nil }
