// Package logging provides the leveled, key/value logger used across lightnode.
// Every wallet pipeline carries its own child logger so that concurrent
// output can be told apart by its wallet, proxy and run fields.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
)

// Level represents a log level.
type Level int

const (
	// LevelDebug is for request-level tracing such as retry attempts.
	LevelDebug Level = iota
	// LevelInfo is for progress messages.
	LevelInfo
	// LevelSuccess marks a confirmed remote action (check-in, task completion).
	LevelSuccess
	// LevelWarn is for a failed operation that will be retried on a later pass.
	LevelWarn
	// LevelError is for failures that need operator attention.
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug:   "DEBUG",
	LevelInfo:    "INFO",
	LevelSuccess: "SUCCESS",
	LevelWarn:    "WARN",
	LevelError:   "ERROR",
}

// String returns the upper-case level name.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel converts a case-insensitive level name to a Level.
func ParseLevel(name string) (Level, error) {
	for level, levelName := range levelNames {
		if strings.EqualFold(levelName, strings.TrimSpace(name)) {
			return level, nil
		}
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", name)
}

// sink is shared between a logger and all of its children so that SetLevel
// and SetOutput on the root apply everywhere.
type sink struct {
	mu       sync.Mutex
	minLevel Level
	output   *log.Logger
}

// Logger writes leveled messages with structured context fields.
type Logger struct {
	sink   *sink
	fields map[string]interface{}
}

var defaultLogger = New()

// New creates a Logger writing to stderr at info level.
func New() *Logger {
	return NewWithWriter(os.Stderr)
}

// NewWithWriter creates a Logger writing timestamped lines to w.
func NewWithWriter(w io.Writer) *Logger {
	return &Logger{
		sink: &sink{
			minLevel: LevelInfo,
			output:   log.New(w, "", log.LstdFlags),
		},
		fields: map[string]interface{}{},
	}
}

// Discard returns a Logger that drops everything. Useful in tests.
func Discard() *Logger {
	l := NewWithWriter(io.Discard)
	l.SetLevel(LevelError + 1)
	return l
}

// SetLevel sets the minimum level for this logger and every child derived from it.
func (l *Logger) SetLevel(level Level) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.minLevel = level
}

// SetOutput replaces the underlying output.
func (l *Logger) SetOutput(output *log.Logger) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.output = output
}

// Enabled reports whether a message at level would be written.
func (l *Logger) Enabled(level Level) bool {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return level >= l.sink.minLevel
}

// With returns a child Logger carrying one more context field.
func (l *Logger) With(key string, value interface{}) *Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields returns a child Logger carrying additional context fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Logger{sink: l.sink, fields: merged}
}

func (l *Logger) log(level Level, msg string, keyVals ...interface{}) {
	if !l.Enabled(level) {
		return
	}

	all := make(map[string]interface{}, len(l.fields)+len(keyVals)/2)
	for k, v := range l.fields {
		all[k] = v
	}
	for i := 0; i+1 < len(keyVals); i += 2 {
		if key, ok := keyVals[i].(string); ok {
			all[key] = keyVals[i+1]
		}
	}

	var sb strings.Builder
	sb.WriteString(level.String())
	sb.WriteString(": ")
	sb.WriteString(msg)

	if len(all) > 0 {
		keys := make([]string, 0, len(all))
		for k := range all {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteString(" |")
		for _, k := range keys {
			sb.WriteString(" ")
			sb.WriteString(k)
			sb.WriteString("=")
			sb.WriteString(formatValue(all[k]))
		}
	}

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.output.Print(sb.String())
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "<nil>"
	case string:
		if val == "" || strings.ContainsAny(val, " \t\n\"") {
			return fmt.Sprintf("%q", val)
		}
		return val
	case error:
		return fmt.Sprintf("%q", val.Error())
	case []byte:
		return fmt.Sprintf("%q", string(val))
	default:
		return fmt.Sprint(v)
	}
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, keyVals ...interface{}) {
	l.log(LevelDebug, msg, keyVals...)
}

// Info logs at info level.
func (l *Logger) Info(msg string, keyVals ...interface{}) {
	l.log(LevelInfo, msg, keyVals...)
}

// Success logs a confirmed remote action.
func (l *Logger) Success(msg string, keyVals ...interface{}) {
	l.log(LevelSuccess, msg, keyVals...)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, keyVals ...interface{}) {
	l.log(LevelWarn, msg, keyVals...)
}

// Error logs at error level.
func (l *Logger) Error(msg string, keyVals ...interface{}) {
	l.log(LevelError, msg, keyVals...)
}

// Default returns the package-level logger.
func Default() *Logger {
	return defaultLogger
}

// SetLevel sets the minimum level of the package-level logger.
func SetLevel(level Level) {
	defaultLogger.SetLevel(level)
}

// With returns a child of the package-level logger.
func With(key string, value interface{}) *Logger {
	return defaultLogger.With(key, value)
}
