package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "invoicer.log")

	log, err := New(Config{Level: "debug", Output: path, Format: "json"})
	require.NoError(t, err)
	log.Info("invoice generated", zap.String("order_id", "A1"))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry))
	assert.Equal(t, "invoice generated", entry["msg"])
	assert.Equal(t, "A1", entry["order_id"])
	assert.Contains(t, entry, "timestamp")
}

func TestNewLevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warn.log")

	log, err := New(Config{Level: "warn", Output: path, Format: "console"})
	require.NoError(t, err)
	log.Info("hidden")
	log.Warn("shown")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestNewUnknownLevelDefaultsToInfo(t *testing.T) {
	log, err := New(Config{Level: "chatty", Output: "stderr"})

	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zap.InfoLevel))
	assert.False(t, log.Core().Enabled(zap.DebugLevel))
}
