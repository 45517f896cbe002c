package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retaileda/internal/config"
)

func decodeLines(t *testing.T, data []byte) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), "log output is not valid JSON: %s", line)
		entries = append(entries, entry)
	}
	return entries
}

func TestNewLogger_File(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "test.log")
	cfg := config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	}

	var console bytes.Buffer
	logger, file, err := NewLogger(cfg, &console)
	require.NoError(t, err)
	require.NotNil(t, logger)
	require.NotNil(t, file)

	logger.Info("test message", "key", "value")
	require.NoError(t, file.Close())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	entries := decodeLines(t, content)
	require.Len(t, entries, 1)
	assert.Equal(t, "test message", entries[0]["msg"])
	assert.Equal(t, "value", entries[0]["key"])
	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Empty(t, console.String(), "file output does not echo to the console")
}

func TestNewLogger_Both(t *testing.T) {
	var console bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "both.log")

	logger, file, err := NewLogger(config.LoggingConfig{Level: "info", Output: "both", FilePath: logFile}, &console)
	require.NoError(t, err)
	require.NotNil(t, file)

	logger.Info("rows loaded", "rows", 3)
	require.NoError(t, file.Close())

	fromFile, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Equal(t, console.String(), string(fromFile))
	assert.Equal(t, float64(3), decodeLines(t, fromFile)[0]["rows"])
}

func TestNewLogger_ConsoleOnly(t *testing.T) {
	var console bytes.Buffer

	logger, file, err := NewLogger(config.LoggingConfig{Level: "warn", Output: "console"}, &console)
	require.NoError(t, err)
	assert.Nil(t, file)

	logger.Info("filtered out")
	logger.Warn("kept")

	entries := decodeLines(t, console.Bytes())
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0]["msg"])
}

func TestTraceIDInjection(t *testing.T) {
	var console bytes.Buffer
	logger, _, err := NewLogger(config.LoggingConfig{Level: "debug", Output: "console"}, &console)
	require.NoError(t, err)

	ctx := WithTraceID(context.Background(), "test-trace-123")
	logger.InfoContext(ctx, "with trace")
	logger.With("component", "loader").WithGroup("g").InfoContext(ctx, "grouped")
	logger.Info("without trace")

	entries := decodeLines(t, console.Bytes())
	require.Len(t, entries, 3)
	assert.Equal(t, "test-trace-123", entries[0]["trace_id"])
	assert.Equal(t, "loader", entries[1]["component"])
	assert.NotContains(t, entries[2], "trace_id")
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level    string
		expected string
	}{
		{"debug", "DEBUG"},
		{"info", "INFO"},
		{"warn", "WARN"},
		{"error", "ERROR"},
		{"bogus", "INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLogLevel(tt.level).String())
		})
	}
}

func TestOpenLogFile_Unwritable(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	_, _, err := NewLogger(config.LoggingConfig{Output: "file", FilePath: filepath.Join(blocker, "x.log")}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", GetTraceID(ctx))

	ctx = EnsureTraceID(ctx)
	id := GetTraceID(ctx)
	assert.Len(t, id, 36)

	assert.Equal(t, id, GetTraceID(EnsureTraceID(ctx)), "existing trace id is kept")
	assert.NotEqual(t, GenerateTraceID(), GenerateTraceID())
}

func TestLoggerDecorators(t *testing.T) {
	var console bytes.Buffer
	logger, _, err := NewLogger(config.LoggingConfig{Level: "info", Output: "console"}, &console)
	require.NoError(t, err)

	assert.Same(t, logger, WithError(logger, nil))
	WithError(WithComponent(logger, "report"), assert.AnError).Info("failed")

	entry := decodeLines(t, console.Bytes())[0]
	assert.Equal(t, "report", entry["component"])
	assert.Equal(t, assert.AnError.Error(), entry["error"])
}
