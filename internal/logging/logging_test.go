package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessro/spotify-cli/internal/config"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		verbose bool
		want    log.Level
	}{
		{"default", "", false, log.InfoLevel},
		{"warn", "warn", false, log.WarnLevel},
		{"verbose wins", "error", true, log.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, closer, err := New(config.LogConfig{Level: tt.level}, tt.verbose)
			require.NoError(t, err)
			defer func() { _ = closer.Close() }()
			assert.Equal(t, tt.want, logger.GetLevel())
		})
	}
}

func TestNewInvalidLevel(t *testing.T) {
	_, _, err := New(config.LogConfig{Level: "chatty"}, false)
	assert.Error(t, err)
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "spotify-cli.log")

	logger, closer, err := New(config.LogConfig{Level: "debug", File: path}, false)
	require.NoError(t, err)
	logger.Debug("refreshing access token")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "refreshing access token")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)
	logger.Info("hello", "key", "value")
	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "key=value")
}
