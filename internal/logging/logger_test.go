package logging

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer, level Level) *Logger {
	logger := NewWithWriter(buf)
	logger.SetLevel(level)
	logger.SetOutput(log.New(buf, "", 0))
	return logger
}

func emit(logger *Logger, level Level, msg string) {
	switch level {
	case LevelDebug:
		logger.Debug(msg)
	case LevelInfo:
		logger.Info(msg)
	case LevelSuccess:
		logger.Success(msg)
	case LevelWarn:
		logger.Warn(msg)
	case LevelError:
		logger.Error(msg)
	}
}

func TestLoggerLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		minLevel  Level
		logLevel  Level
		shouldLog bool
	}{
		{"debug allowed at debug", LevelDebug, LevelDebug, true},
		{"debug blocked at info", LevelInfo, LevelDebug, false},
		{"info allowed at info", LevelInfo, LevelInfo, true},
		{"success allowed at info", LevelInfo, LevelSuccess, true},
		{"info blocked at success", LevelSuccess, LevelInfo, false},
		{"success blocked at warn", LevelWarn, LevelSuccess, false},
		{"warn allowed at warn", LevelWarn, LevelWarn, true},
		{"warn blocked at error", LevelError, LevelWarn, false},
		{"error allowed at error", LevelError, LevelError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			emit(newTestLogger(&buf, tt.minLevel), tt.logLevel, "test message")

			if tt.shouldLog {
				assert.Contains(t, buf.String(), "test message")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestLoggerFieldsAreSorted(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newTestLogger(&buf, LevelDebug)

	logger.WithFields(map[string]interface{}{
		"wallet": "0xabc",
		"proxy":  "http://127.0.0.1:8080",
	}).Warn("request failed", "attempt", 3, "error", errors.New("connection reset"))

	assert.Equal(t,
		`WARN: request failed | attempt=3 error="connection reset" proxy=http://127.0.0.1:8080 wallet=0xabc`+"\n",
		buf.String())
}

func TestLoggerChildSharesLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newTestLogger(&buf, LevelInfo)
	child := logger.With("wallet", "0xabc")

	child.Debug("hidden")
	assert.Empty(t, buf.String())

	logger.SetLevel(LevelDebug)
	child.Debug("visible")
	assert.Contains(t, buf.String(), "DEBUG: visible | wallet=0xabc")
}

func TestLoggerOriginalUnmodified(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newTestLogger(&buf, LevelDebug)

	_ = logger.With("wallet", "0xabc")
	logger.Info("root message")

	assert.NotContains(t, buf.String(), "wallet=")
}

func TestLoggerOddKeyValsIgnoresDangling(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newTestLogger(&buf, LevelDebug)

	logger.Info("odd", "status", 404, "dangling")
	assert.Equal(t, "INFO: odd | status=404\n", buf.String())
}

func TestFormatValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    interface{}
		expected string
	}{
		{"simple string", "hello", "hello"},
		{"empty string", "", `""`},
		{"string with spaces", "hello world", `"hello world"`},
		{"integer", 42, "42"},
		{"error", errors.New("oops"), `"oops"`},
		{"bytes", []byte(`{"ok":true}`), `"{\"ok\":true}"`},
		{"nil", nil, "<nil>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, formatValue(tt.input))
		})
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	level, err := ParseLevel("success")
	require.NoError(t, err)
	assert.Equal(t, LevelSuccess, level)

	level, err = ParseLevel(" DEBUG ")
	require.NoError(t, err)
	assert.Equal(t, LevelDebug, level)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestDiscardWritesNothing(t *testing.T) {
	t.Parallel()

	logger := Discard()
	assert.False(t, logger.Enabled(LevelError))
	logger.Error("dropped")
}

func TestLevelPrefixes(t *testing.T) {
	t.Parallel()

	for _, level := range []Level{LevelDebug, LevelInfo, LevelSuccess, LevelWarn, LevelError} {
		var buf bytes.Buffer
		emit(newTestLogger(&buf, LevelDebug), level, "test")
		assert.True(t, strings.HasPrefix(buf.String(), level.String()+":"), buf.String())
	}
}
