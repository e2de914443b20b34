// Package avlog holds the process-wide log level shared by every codec and
// muxer adapter. All writers in a process see the same level.
package avlog

import (
	"sync"
	"sync/atomic"

	"github.com/user/vidwriter/pkg/adapters/logger"
	"github.com/user/vidwriter/pkg/ports"
)

var (
	level    atomic.Int32
	initOnce sync.Once

	mu  sync.RWMutex
	out ports.Logger = logger.NewConsole(ports.LevelDebug)
)

func init() {
	level.Store(int32(ports.LevelInfo))
}

// Init sets the level the first time it is called and is a no-op afterwards.
// It reports whether this call performed the initialisation.
func Init(l ports.LogLevel) bool {
	did := false
	initOnce.Do(func() {
		level.Store(int32(l))
		did = true
	})
	return did
}

// SetLevel overrides the level unconditionally.
func SetLevel(l ports.LogLevel) {
	level.Store(int32(l))
}

// Level returns the current level.
func Level() ports.LogLevel {
	return ports.LogLevel(level.Load())
}

// Enabled reports whether messages at l are emitted.
func Enabled(l ports.LogLevel) bool {
	return l >= Level() && Level() != ports.LevelQuiet
}

// SetOutput replaces the destination logger and returns the previous one.
func SetOutput(l ports.Logger) ports.Logger {
	mu.Lock()
	defer mu.Unlock()
	prev := out
	out = l
	return prev
}

func output() ports.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return out
}

// Component returns a logger for one adapter that honours the global level.
func Component(name string) ports.Logger {
	return &componentLogger{component: name}
}

type componentLogger struct {
	component string
}

func (c *componentLogger) log(l ports.LogLevel, msg string, args []interface{}) {
	if !Enabled(l) {
		return
	}
	dst := output().WithComponent(c.component)
	switch l {
	case ports.LevelDebug:
		dst.Debug(msg, args...)
	case ports.LevelInfo:
		dst.Info(msg, args...)
	case ports.LevelWarn:
		dst.Warn(msg, args...)
	default:
		dst.Error(msg, args...)
	}
}

func (c *componentLogger) Debug(msg string, args ...interface{}) { c.log(ports.LevelDebug, msg, args) }
func (c *componentLogger) Info(msg string, args ...interface{})  { c.log(ports.LevelInfo, msg, args) }
func (c *componentLogger) Warn(msg string, args ...interface{})  { c.log(ports.LevelWarn, msg, args) }
func (c *componentLogger) Error(msg string, args ...interface{}) { c.log(ports.LevelError, msg, args) }

func (c *componentLogger) WithComponent(component string) ports.Logger {
	return &componentLogger{component: component}
}
