package logger

import "github.com/user/vidwriter/pkg/ports"

// NoopLogger discards all messages. The CLI uses it for --quiet and the
// writer falls back to it when no logger is configured.
type NoopLogger struct{}

var _ ports.Logger = (*NoopLogger)(nil)

// NewNoop creates a new no-op logger.
func NewNoop() *NoopLogger {
	return &NoopLogger{}
}

func (*NoopLogger) Debug(string, ...interface{}) {}
func (*NoopLogger) Info(string, ...interface{})  {}
func (*NoopLogger) Warn(string, ...interface{})  {}
func (*NoopLogger) Error(string, ...interface{}) {}

func (l *NoopLogger) WithComponent(string) ports.Logger { return l }
