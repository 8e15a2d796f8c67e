package auth

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tessro/spotify-cli/internal/errors"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "credentials.json"))
	require.NoError(t, err)
	return s
}

func TestStoreMissingFileIsEmpty(t *testing.T) {
	s := openTestStore(t)

	for _, f := range []string{FieldClientID, FieldClientSecret, FieldAccessToken, FieldRefreshToken, FieldTokenType, FieldExpiresAt} {
		assert.False(t, s.Has(f), f)
	}
	_, ok := s.Tokens()
	assert.False(t, ok)
	_, ok = s.Client()
	assert.False(t, ok)
	_, err := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(err), "opening must not create the file")
}

func TestStoreSaveTokensPersists(t *testing.T) {
	s := openTestStore(t)

	expires := time.UnixMilli(time.Now().Add(time.Hour).UnixMilli())
	require.NoError(t, s.SaveClient(ClientRegistration{ClientID: "id", ClientSecret: "secret"}))
	require.NoError(t, s.SaveTokens(TokenSet{
		AccessToken:  "access_123",
		RefreshToken: "refresh_456",
		TokenType:    "Bearer",
		ExpiresAt:    expires,
	}))

	reopened, err := OpenStore(s.Path())
	require.NoError(t, err)

	ts, ok := reopened.Tokens()
	require.True(t, ok)
	assert.Equal(t, "access_123", ts.AccessToken)
	assert.Equal(t, "refresh_456", ts.RefreshToken)
	assert.Equal(t, "Bearer", ts.TokenType)
	assert.True(t, expires.Equal(ts.ExpiresAt))

	reg, ok := reopened.Client()
	require.True(t, ok)
	assert.Equal(t, "id", reg.ClientID)
	assert.Equal(t, "secret", reg.ClientSecret)

	v, ok := reopened.Get(FieldExpiresAt)
	require.True(t, ok)
	assert.Equal(t, strconv.FormatInt(expires.UnixMilli(), 10), v)

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestStoreGetSetHas(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Set(FieldClientID, "abc"))
	require.NoError(t, s.Set(FieldExpiresAt, "1700000000000"))

	v, ok := s.Get(FieldClientID)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)
	assert.True(t, s.Has(FieldExpiresAt))
	assert.False(t, s.Has(FieldAccessToken))

	assert.ErrorIs(t, s.Set("favourite_colour", "blue"), ErrUnknownField)
	assert.Error(t, s.Set(FieldExpiresAt, "tomorrow"))
	assert.False(t, s.Has("favourite_colour"))
}

func TestStoreClear(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.SaveClient(ClientRegistration{ClientID: "id", ClientSecret: "secret"}))
	require.NoError(t, s.SaveTokens(TokenSet{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer", ExpiresAt: time.Now()}))

	require.NoError(t, s.Clear())

	assert.False(t, s.Has(FieldClientID))
	assert.False(t, s.Has(FieldAccessToken))
	assert.False(t, s.Has(FieldRefreshToken))
	_, err := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(err))

	// Clearing twice is fine.
	assert.NoError(t, s.Clear())
}

func TestStoreWriteFailureKeepsLastGoodRecord(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	s, err := OpenStore(filepath.Join(blocker, "credentials.json"))
	require.NoError(t, err)

	err = s.SaveTokens(TokenSet{AccessToken: "a", RefreshToken: "r"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrStoreIO)

	_, ok := s.Tokens()
	assert.False(t, ok, "memory must not diverge from disk after a failed write")
}

func TestStoreNoTempFilesLeftBehind(t *testing.T) {
	s := openTestStore(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Set(FieldAccessToken, strconv.Itoa(i)))
	}

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "credentials.json", entries[0].Name())
}

func TestStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := OpenStore(path)
	assert.ErrorIs(t, err, apperrors.ErrStoreIO)
}

func TestRemoveStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("{truncated"), 0600))

	require.NoError(t, RemoveStore(path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	s, err := OpenStore(path)
	require.NoError(t, err)
	_, ok := s.Tokens()
	assert.False(t, ok)
}

func TestRemoveStoreMissingFile(t *testing.T) {
	assert.NoError(t, RemoveStore(filepath.Join(t.TempDir(), "credentials.json")))
}

func TestStoreClosed(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Set(FieldClientID, "x"), ErrStoreClosed)
	assert.ErrorIs(t, s.Clear(), ErrStoreClosed)
}

func TestStoreNestedDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "credentials.json")
	s, err := OpenStore(path)
	require.NoError(t, err)

	require.NoError(t, s.SaveTokens(TokenSet{AccessToken: "test", RefreshToken: "r"}))
	_, err = os.Stat(path)
	assert.NoError(t, err)
}
