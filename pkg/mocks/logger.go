package mocks

import (
	"fmt"
	"strings"
	"sync"

	"github.com/user/vidwriter/pkg/ports"
)

// Logger is a mock implementation of ports.Logger that keeps formatted
// messages per level.
type Logger struct {
	mu      sync.Mutex
	entries []LogEntry
}

// LogEntry is one recorded message.
type LogEntry struct {
	Level     ports.LogLevel
	Component string
	Message   string
}

type componentLogger struct {
	root      *Logger
	component string
}

func (m *Logger) add(level ports.LogLevel, component, msg string, args []interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, LogEntry{Level: level, Component: component, Message: fmt.Sprintf(msg, args...)})
}

func (m *Logger) Debug(msg string, args ...interface{}) { m.add(ports.LevelDebug, "", msg, args) }
func (m *Logger) Info(msg string, args ...interface{})  { m.add(ports.LevelInfo, "", msg, args) }
func (m *Logger) Warn(msg string, args ...interface{})  { m.add(ports.LevelWarn, "", msg, args) }
func (m *Logger) Error(msg string, args ...interface{}) { m.add(ports.LevelError, "", msg, args) }

func (m *Logger) WithComponent(component string) ports.Logger {
	return &componentLogger{root: m, component: component}
}

// Entries returns all messages at level.
func (m *Logger) Entries(level ports.LogLevel) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, e := range m.entries {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

// Contains reports whether any message at level contains substr.
func (m *Logger) Contains(level ports.LogLevel, substr string) bool {
	for _, msg := range m.Entries(level) {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

func (c *componentLogger) Debug(msg string, args ...interface{}) {
	c.root.add(ports.LevelDebug, c.component, msg, args)
}
func (c *componentLogger) Info(msg string, args ...interface{}) {
	c.root.add(ports.LevelInfo, c.component, msg, args)
}
func (c *componentLogger) Warn(msg string, args ...interface{}) {
	c.root.add(ports.LevelWarn, c.component, msg, args)
}
func (c *componentLogger) Error(msg string, args ...interface{}) {
	c.root.add(ports.LevelError, c.component, msg, args)
}
func (c *componentLogger) WithComponent(component string) ports.Logger {
	return &componentLogger{root: c.root, component: component}
}

var _ ports.Logger = (*Logger)(nil)
