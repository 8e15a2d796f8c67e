package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessro/spotify-cli/internal/config"
	"github.com/tessro/spotify-cli/internal/spotify/auth"
)

// withCredentialsFile points the package globals at a temporary credentials
// file and restores them afterwards.
func withCredentialsFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.json")

	prevCfg, prevLogger, prevYes := cfg, logger, resetYes
	cfg = config.Default()
	cfg.Auth.CredentialsFile = path
	logger = log.New(io.Discard)
	resetYes = true

	t.Cleanup(func() {
		_ = closeResources()
		cfg, logger, resetYes = prevCfg, prevLogger, prevYes
	})
	return path
}

func TestResetCorruptCredentials(t *testing.T) {
	path := withCredentialsFile(t)
	require.NoError(t, os.WriteFile(path, []byte("{truncated"), 0600))

	require.NoError(t, runReset(resetCmd, nil))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "credentials file should be gone")
}

func TestResetStoredCredentials(t *testing.T) {
	path := withCredentialsFile(t)

	s, err := auth.OpenStore(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveTokens(auth.TokenSet{AccessToken: "a", RefreshToken: "r"}))
	require.NoError(t, s.Close())

	require.NoError(t, runReset(resetCmd, nil))

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
