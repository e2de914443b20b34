// Package ports defines the interfaces the writer and the pipeline depend on.
package ports

import "fmt"

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// LevelDebug covers per-packet timing, format dumps and encoder chatter.
	LevelDebug LogLevel = iota
	// LevelInfo covers pipeline progress.
	LevelInfo
	// LevelWarn covers problems the writer recovers from, such as a format
	// fallback or unconsumed options.
	LevelWarn
	// LevelError covers failures that abort a run.
	LevelError
	// LevelQuiet suppresses all log output.
	LevelQuiet
)

var levelNames = map[string]LogLevel{
	"debug": LevelDebug,
	"info":  LevelInfo,
	"warn":  LevelWarn,
	"error": LevelError,
	"quiet": LevelQuiet,

	// ffmpeg spellings
	"trace":   LevelDebug,
	"verbose": LevelDebug,
	"warning": LevelWarn,
	"fatal":   LevelError,
	"panic":   LevelError,
}

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelQuiet:
		return "quiet"
	default:
		return "unknown"
	}
}

// ParseLogLevel parses a level name, accepting ffmpeg's spellings too.
// Unknown names yield LevelInfo.
func ParseLogLevel(s string) LogLevel {
	if l, ok := levelNames[s]; ok {
		return l
	}
	return LevelInfo
}

// MarshalText implements encoding.TextMarshaler.
func (l LogLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unlike ParseLogLevel it
// rejects unknown names.
func (l *LogLevel) UnmarshalText(text []byte) error {
	v, ok := levelNames[string(text)]
	if !ok {
		return fmt.Errorf("unknown log level %q", text)
	}
	*l = v
	return nil
}

// Logger abstracts logging operations with multi-language support.
// msg is a translation key and a printf format at once.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})

	// WithComponent returns a new Logger that prefixes messages with the
	// component name: a stage, a muxer or an encoder.
	WithComponent(component string) Logger
}
