package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pconstants "github.com/turbot/pipe-fittings/constants"
)

func TestLogLevel(t *testing.T) {
	tests := map[string]slog.Leveler{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"off":     pconstants.LogLevelOff,
		"verbose": slog.LevelInfo,
	}
	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, want, LogLevel(name))
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Warn("no matching rows found in file", "path", "/tmp/a.csv", "error", errors.New("boom"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "data-lander", entry["source"])
	assert.Equal(t, "/tmp/a.csv", entry["path"])
	assert.Equal(t, "boom", entry["error"])
}

func TestNewLogger_Off(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, pconstants.LogLevelOff).Error("dropped")
	assert.Empty(t, buf.String())
}
