package utils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "server.log")

	logger, err := NewLogger(LoggerConfig{Level: "info", OutputPath: path, Format: "json"})
	require.NoError(t, err)

	logger.Debug("dropped")
	logger.Info("workflow completed")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &line))
	assert.Equal(t, "workflow completed", line["msg"])
	assert.Equal(t, "info", line["level"])
	assert.Contains(t, line, "timestamp")
}

func TestNewLogger_RejectsBadConfig(t *testing.T) {
	_, err := NewLogger(LoggerConfig{Level: "loud"})
	assert.Error(t, err)

	_, err = NewLogger(LoggerConfig{Level: "info", Format: "xml"})
	assert.Error(t, err)
}
