package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kavirubc/ticketrag/internal/config"
)

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(&config.LoggingConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestNew_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ticketrag.log")
	logger, err := New(&config.LoggingConfig{Level: "info", File: path, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("index loaded")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"index loaded"`)
	assert.NotContains(t, string(data), "hidden")
}
