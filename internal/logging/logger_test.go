package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestNewJSONWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := Component(New(Options{Level: "info", Format: "json", Output: &buf}), "review")

	logger.Debug("hidden")
	logger.Info("session started", slog.Int("items", 3))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "session started", entry["msg"])
	assert.Equal(t, "review", entry["component"])
	assert.EqualValues(t, 3, entry["items"])
}
