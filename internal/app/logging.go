// Package app is the terminal front end: it owns the screen, the key
// loop, and the session of open documents, and funnels every edit
// through the engine so the views, journal, and search always agree.
package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LogLevel is the severity of a log message.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

// String returns the level's log-line tag.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel reads a level name, defaulting to info.
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "debug", "DEBUG":
		return LogLevelDebug
	case "info", "INFO":
		return LogLevelInfo
	case "warn", "WARN", "warning", "WARNING":
		return LogLevelWarn
	case "error", "ERROR":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// Logger writes leveled, field-tagged diagnostics. A full-screen
// editor owns the terminal, so output goes to a file, never stderr.
type Logger struct {
	mu       sync.Mutex
	level    LogLevel
	output   io.Writer
	closer   io.Closer
	fields   map[string]any
	disabled bool
}

// NewLogger opens a logger writing to the file at path at the given
// minimum level. An empty path picks bytestorm.log in the system temp
// directory.
func NewLogger(path string, level LogLevel) (*Logger, error) {
	if path == "" {
		path = filepath.Join(os.TempDir(), "bytestorm.log")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("app: open log file: %w", err)
	}
	return &Logger{level: level, output: f, closer: f}, nil
}

// NewLoggerTo writes to w, for tests.
func NewLoggerTo(w io.Writer, level LogLevel) *Logger {
	return &Logger{level: level, output: w}
}

// NullLogger discards everything.
var NullLogger = &Logger{disabled: true}

// WithField returns a logger stamping every message with key=value.
func (l *Logger) WithField(key string, value any) *Logger {
	fields := make(map[string]any, len(l.fields)+1)
	for k, v := range l.fields {
		fields[k] = v
	}
	fields[key] = value
	return &Logger{
		level:    l.level,
		output:   l.output,
		closer:   l.closer,
		fields:   fields,
		disabled: l.disabled,
	}
}

// WithComponent tags messages with the originating component.
func (l *Logger) WithComponent(component string) *Logger {
	return l.WithField("component", component)
}

// SetLevel adjusts the minimum severity written.
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Close releases the underlying file, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	l.disabled = true
	return err
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) { l.log(LogLevelDebug, msg, args...) }

// Info logs an informational message.
func (l *Logger) Info(msg string, args ...any) { l.log(LogLevelInfo, msg, args...) }

// Warn logs a warning.
func (l *Logger) Warn(msg string, args ...any) { l.log(LogLevelWarn, msg, args...) }

// Error logs an error.
func (l *Logger) Error(msg string, args ...any) { l.log(LogLevelError, msg, args...) }

func (l *Logger) log(level LogLevel, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.disabled || l.output == nil || level < l.level {
		return
	}

	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	line := fmt.Sprintf("%s [%s] %s", time.Now().Format("2006-01-02T15:04:05.000"), level, msg)
	if len(l.fields) > 0 {
		line += " {"
		first := true
		for k, v := range l.fields {
			if !first {
				line += ", "
			}
			line += fmt.Sprintf("%s=%v", k, v)
			first = false
		}
		line += "}"
	}
	_, _ = l.output.Write([]byte(line + "\n"))
}
