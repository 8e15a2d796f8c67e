package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"

	apperrors "github.com/tessro/spotify-cli/internal/errors"
)

const (
	// DefaultStoreFileName is the default name for the credentials file.
	DefaultStoreFileName = "credentials.json"
)

// Persisted record fields.
const (
	FieldClientID     = "client_id"
	FieldClientSecret = "client_secret"
	FieldAccessToken  = "access_token"
	FieldRefreshToken = "refresh_token"
	FieldTokenType    = "token_type"
	FieldExpiresAt    = "expires_at"
)

// ErrStoreClosed is returned by operations on a closed Store.
var ErrStoreClosed = errors.New("credential store is closed")

// ErrUnknownField is returned for field names outside the record.
var ErrUnknownField = errors.New("unknown credential field")

// Record is the single document persisted by Store. ExpiresAt is epoch
// milliseconds. Credentials are stored in plaintext, protected only by
// file permissions.
type Record struct {
	ClientID     string `json:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
}

// Store persists the client registration and current tokens as one JSON
// record. Every mutation rewrites the whole record through a temp file and
// a rename, so a failed write leaves the previous record intact.
type Store struct {
	path string

	mu     sync.Mutex
	record Record
	closed bool
}

// DefaultStorePath returns ~/.config/spotify-cli/credentials.json (or the
// platform equivalent).
func DefaultStorePath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(configDir, "spotify-cli", DefaultStoreFileName), nil
}

// OpenStore loads the record at path. A missing file is an empty record.
// If path is empty, DefaultStorePath is used.
func OpenStore(path string) (*Store, error) {
	if path == "" {
		p, err := DefaultStorePath()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreIO, err)
		}
		path = p
	}

	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("%w: failed to read %s: %v", apperrors.ErrStoreIO, path, err)
	}

	if err := json.Unmarshal(data, &s.record); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", apperrors.ErrStoreIO, path, err)
	}

	return s, nil
}

// Path returns the path to the credentials file.
func (s *Store) Path() string {
	return s.path
}

// Get returns the string form of a field and whether it is set.
func (s *Store) Get(field string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := getField(&s.record, field)
	if err != nil || v == "" {
		return "", false
	}
	return v, true
}

// Has reports whether a field is set.
func (s *Store) Has(field string) bool {
	_, ok := s.Get(field)
	return ok
}

// Set writes a single field. Token fields should go through SaveTokens so
// they always land together.
func (s *Store) Set(field, value string) error {
	return s.update(func(r *Record) error {
		return setField(r, field, value)
	})
}

// Client returns the stored client registration.
func (s *Store) Client() (ClientRegistration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg := ClientRegistration{ClientID: s.record.ClientID, ClientSecret: s.record.ClientSecret}
	return reg, reg.ClientID != ""
}

// SaveClient persists a client registration.
func (s *Store) SaveClient(reg ClientRegistration) error {
	return s.update(func(r *Record) error {
		r.ClientID = reg.ClientID
		r.ClientSecret = reg.ClientSecret
		return nil
	})
}

// Tokens returns the stored token set. ok is false when no refresh token
// is stored, i.e. the user has never logged in or has reset.
func (s *Store) Tokens() (TokenSet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := TokenSet{
		AccessToken:  s.record.AccessToken,
		RefreshToken: s.record.RefreshToken,
		TokenType:    s.record.TokenType,
	}
	if s.record.ExpiresAt != 0 {
		ts.ExpiresAt = time.UnixMilli(s.record.ExpiresAt)
	}
	return ts, ts.RefreshToken != ""
}

// SaveTokens replaces every token field in one write.
func (s *Store) SaveTokens(ts TokenSet) error {
	return s.update(func(r *Record) error {
		r.AccessToken = ts.AccessToken
		r.RefreshToken = ts.RefreshToken
		r.TokenType = ts.TokenType
		r.ExpiresAt = 0
		if !ts.ExpiresAt.IsZero() {
			r.ExpiresAt = ts.ExpiresAt.UnixMilli()
		}
		return nil
	})
}

// Clear removes the whole record from disk and memory.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: failed to delete %s: %v", apperrors.ErrStoreIO, s.path, err)
	}
	s.record = Record{}
	return nil
}

// RemoveStore deletes the credentials file at path without reading it, so
// a record that no longer parses can still be discarded. If path is empty,
// DefaultStorePath is used. A missing file is not an error.
func RemoveStore(path string) error {
	if path == "" {
		p, err := DefaultStorePath()
		if err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrStoreIO, err)
		}
		path = p
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: failed to delete %s: %v", apperrors.ErrStoreIO, path, err)
	}
	return nil
}

// Close releases the store. Mutations are durable when they return, so
// there is nothing left to flush; later calls fail with ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// update applies fn to a copy of the record and persists it. Memory is only
// updated once the file has been replaced.
func (s *Store) update(fn func(*Record) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	next := s.record
	if err := fn(&next); err != nil {
		return err
	}
	if err := s.write(next); err != nil {
		return err
	}
	s.record = next
	return nil
}

func (s *Store) write(r Record) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("%w: failed to create config directory: %v", apperrors.ErrStoreIO, err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to marshal credentials: %v", apperrors.ErrStoreIO, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".credentials-*.json.tmp")
	if err != nil {
		return fmt.Errorf("%w: failed to create temp file: %v", apperrors.ErrStoreIO, err)
	}
	tmpPath := tmpFile.Name()

	fail := func(op string, err error) error {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: failed to %s: %v", apperrors.ErrStoreIO, op, err)
	}

	if _, err := tmpFile.Write(data); err != nil {
		return fail("write credentials", err)
	}
	if err := tmpFile.Chmod(0600); err != nil {
		return fail("set permissions", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fail("sync credentials", err)
	}
	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: failed to close temp file: %v", apperrors.ErrStoreIO, err)
	}

	// Windows refuses to rename over an existing file.
	if err := os.Rename(tmpPath, s.path); err != nil {
		if runtime.GOOS == "windows" {
			_ = os.Remove(s.path)
			if err := os.Rename(tmpPath, s.path); err == nil {
				return nil
			}
		}
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: failed to replace %s: %v", apperrors.ErrStoreIO, s.path, err)
	}
	return nil
}

func getField(r *Record, field string) (string, error) {
	switch field {
	case FieldClientID:
		return r.ClientID, nil
	case FieldClientSecret:
		return r.ClientSecret, nil
	case FieldAccessToken:
		return r.AccessToken, nil
	case FieldRefreshToken:
		return r.RefreshToken, nil
	case FieldTokenType:
		return r.TokenType, nil
	case FieldExpiresAt:
		if r.ExpiresAt == 0 {
			return "", nil
		}
		return strconv.FormatInt(r.ExpiresAt, 10), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
}

func setField(r *Record, field, value string) error {
	switch field {
	case FieldClientID:
		r.ClientID = value
	case FieldClientSecret:
		r.ClientSecret = value
	case FieldAccessToken:
		r.AccessToken = value
	case FieldRefreshToken:
		r.RefreshToken = value
	case FieldTokenType:
		r.TokenType = value
	case FieldExpiresAt:
		if value == "" {
			r.ExpiresAt = 0
			return nil
		}
		ms, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", FieldExpiresAt, value, err)
		}
		r.ExpiresAt = ms
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}
