package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minsuk/triblend/pkg/config"
)

func jsonConfig() *config.Config {
	return &config.Config{Env: "test", LogLevel: "debug", LogFormat: "json"}
}

func TestLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(jsonConfig(), &buf)

	log.Info("hello")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "test", entry["env"])
	assert.Contains(t, entry, "time")
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(jsonConfig(), &buf)

	log.WithFields(map[string]interface{}{
		"run_id":    "wf-20240101",
		"window_id": 7,
	}).Warn("window skipped")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "wf-20240101", entry["run_id"])
	assert.Equal(t, float64(7), entry["window_id"])
	assert.Equal(t, "warn", entry["level"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	cfg := jsonConfig()
	cfg.LogLevel = "warn"
	log := NewWithWriter(cfg, &buf)

	log.Debug("not visible")
	log.Info("not visible either")
	assert.Zero(t, buf.Len())

	log.Error("visible")
	assert.NotZero(t, buf.Len())
}

func TestParseLogLevel_UnknownDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	cfg := jsonConfig()
	cfg.LogLevel = "nonsense"
	log := NewWithWriter(cfg, &buf)

	log.Debug("filtered at info level")
	assert.Zero(t, buf.Len())
}
