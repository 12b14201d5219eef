// Package logger is the leveled logging interface shared by the API client,
// the dashboard session and the CLI.
//
// While the dashboard owns the terminal, the standard log package is pointed
// at a file (or discarded), so everything here goes through log.Printf rather
// than writing to stderr directly.
package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// DebugEnv is the environment variable that enables debug output.
const DebugEnv = "SYSDASH_DEBUG"

// Level orders log severities.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// Logger is implemented by everything that accepts poll and request logs.
// Methods take a printf-style format.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// stdLogger writes through the standard log package. Lines below minLevel are dropped.
type stdLogger struct {
	prefix   string
	minLevel Level
}

// NewEnvLogger returns a logger tagged with prefix, e.g. "[api]". Debug lines
// are only written when SYSDASH_DEBUG is non-empty.
func NewEnvLogger(prefix string) Logger {
	lvl := LevelInfo
	if os.Getenv(DebugEnv) != "" {
		lvl = LevelDebug
	}
	return &stdLogger{prefix: prefix, minLevel: lvl}
}

func (l *stdLogger) write(level Level, format string, args ...interface{}) {
	if level < l.minLevel {
		return
	}
	var b strings.Builder
	if l.prefix != "" {
		b.WriteString(l.prefix)
		b.WriteByte(' ')
	}
	if level >= LevelWarn {
		b.WriteString(strings.ToUpper(level.String()))
		b.WriteString(": ")
	}
	b.WriteString(fmt.Sprintf(format, args...))
	log.Print(b.String())
}

func (l *stdLogger) Debug(format string, args ...interface{}) { l.write(LevelDebug, format, args...) }
func (l *stdLogger) Info(format string, args ...interface{})  { l.write(LevelInfo, format, args...) }
func (l *stdLogger) Warn(format string, args ...interface{})  { l.write(LevelWarn, format, args...) }
func (l *stdLogger) Error(format string, args ...interface{}) { l.write(LevelError, format, args...) }

type noopLogger struct{}

// Noop returns a logger that discards everything.
func Noop() Logger {
	return noopLogger{}
}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}

// LogMessage is one captured line.
type LogMessage struct {
	Level   string
	Message string
}

// BufferLogger records messages for test assertions. Fetch commands log from
// their own goroutines, so access is locked.
type BufferLogger struct {
	mu       sync.Mutex
	Messages []LogMessage
}

// NewBufferLogger returns an empty BufferLogger.
func NewBufferLogger() *BufferLogger {
	return &BufferLogger{}
}

func (l *BufferLogger) record(level Level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = append(l.Messages, LogMessage{Level: level.String(), Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Debug(format string, args ...interface{}) { l.record(LevelDebug, format, args...) }
func (l *BufferLogger) Info(format string, args ...interface{})  { l.record(LevelInfo, format, args...) }
func (l *BufferLogger) Warn(format string, args ...interface{})  { l.record(LevelWarn, format, args...) }
func (l *BufferLogger) Error(format string, args ...interface{}) { l.record(LevelError, format, args...) }

// HasLevel reports whether anything was logged at level ("debug", "warn", ...).
func (l *BufferLogger) HasLevel(level string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.Messages {
		if m.Level == level {
			return true
		}
	}
	return false
}

// Contains reports whether any captured message includes substr.
func (l *BufferLogger) Contains(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.Messages {
		if strings.Contains(m.Message, substr) {
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the captured messages.
func (l *BufferLogger) Snapshot() []LogMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogMessage, len(l.Messages))
	copy(out, l.Messages)
	return out
}

// Clear drops all captured messages.
func (l *BufferLogger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = nil
}
