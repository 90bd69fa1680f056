// Package logger provides a simple logging interface for obddash components.
// It allows packages to log debug, info, warn, and error messages without
// being coupled to a specific logging implementation.
//
// The default implementation writes through zerolog. While the dashboard is
// on screen the terminal belongs to Bubble Tea, so the CLI points the output
// at a log file with SetOutput before starting the program.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DebugEnv enables debug output when set to any non-empty value.
const DebugEnv = "OBDDASH_DEBUG"

// Logger defines the interface for logging operations.
// All methods accept a format string and arguments, similar to fmt.Printf.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

var (
	sinkMu    sync.RWMutex
	sink      = newSink(os.Stderr)
	debugFlag bool
)

func newSink(w io.Writer) zerolog.Logger {
	out := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(out).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}

// SetOutput redirects every env logger to w.
func SetOutput(w io.Writer) {
	sinkMu.Lock()
	defer sinkMu.Unlock()
	sink = newSink(w)
}

// SetDebug turns debug output on or off regardless of the environment.
func SetDebug(enabled bool) {
	sinkMu.Lock()
	defer sinkMu.Unlock()
	debugFlag = enabled
}

// OpenFile opens (creating parent directories as needed) a log file for appending.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

func current() (zerolog.Logger, bool) {
	sinkMu.RLock()
	defer sinkMu.RUnlock()
	return sink, debugFlag || os.Getenv(DebugEnv) != ""
}

// envLogger implements Logger on top of the shared zerolog sink.
// Debug messages are only written when debug is enabled.
type envLogger struct {
	prefix string
}

// NewEnvLogger creates a logger that respects OBDDASH_DEBUG and SetDebug.
// The prefix is prepended to all log messages (e.g., "[conn]" or "[ingest]").
func NewEnvLogger(prefix string) Logger {
	return &envLogger{prefix: prefix}
}

func (l *envLogger) line(format string, args []interface{}) string {
	msg := fmt.Sprintf(format, args...)
	if l.prefix == "" {
		return msg
	}
	return l.prefix + " " + msg
}

func (l *envLogger) Debug(format string, args ...interface{}) {
	s, debug := current()
	if !debug {
		return
	}
	s.Debug().Msg(l.line(format, args))
}

func (l *envLogger) Info(format string, args ...interface{}) {
	s, _ := current()
	s.Info().Msg(l.line(format, args))
}

func (l *envLogger) Warn(format string, args ...interface{}) {
	s, _ := current()
	s.Warn().Msg(l.line(format, args))
}

func (l *envLogger) Error(format string, args ...interface{}) {
	s, _ := current()
	s.Error().Msg(l.line(format, args))
}

// noopLogger implements Logger but discards all messages.
type noopLogger struct{}

// Noop returns a logger that discards all messages.
func Noop() Logger {
	return &noopLogger{}
}

func (l *noopLogger) Debug(format string, args ...interface{}) {}
func (l *noopLogger) Info(format string, args ...interface{})  {}
func (l *noopLogger) Warn(format string, args ...interface{})  {}
func (l *noopLogger) Error(format string, args ...interface{}) {}

// LogMessage represents a captured log message.
type LogMessage struct {
	Level   string
	Message string
}

// BufferLogger captures log messages for testing. It is safe for use from
// the ingestion goroutine and the test goroutine at the same time.
type BufferLogger struct {
	mu       sync.Mutex
	Messages []LogMessage
}

// NewBufferLogger creates a logger that captures messages for inspection.
func NewBufferLogger() *BufferLogger {
	return &BufferLogger{
		Messages: make([]LogMessage, 0),
	}
}

func (l *BufferLogger) add(level, format string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = append(l.Messages, LogMessage{Level: level, Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Debug(format string, args ...interface{}) { l.add("debug", format, args) }
func (l *BufferLogger) Info(format string, args ...interface{})  { l.add("info", format, args) }
func (l *BufferLogger) Warn(format string, args ...interface{})  { l.add("warn", format, args) }
func (l *BufferLogger) Error(format string, args ...interface{}) { l.add("error", format, args) }

// Snapshot returns a copy of the captured messages.
func (l *BufferLogger) Snapshot() []LogMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogMessage, len(l.Messages))
	copy(out, l.Messages)
	return out
}

// HasLevel returns true if any message was logged at the given level.
func (l *BufferLogger) HasLevel(level string) bool {
	for _, m := range l.Snapshot() {
		if m.Level == level {
			return true
		}
	}
	return false
}

// Clear removes all captured messages.
func (l *BufferLogger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = l.Messages[:0]
}

// defaultLogger is the package-level default logger.
var defaultLogger = NewEnvLogger("")

// Default returns the default logger for the package.
func Default() Logger {
	return defaultLogger
}

// SetDefault sets the default logger for the package.
func SetDefault(l Logger) {
	defaultLogger = l
}
