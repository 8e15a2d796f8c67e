package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// stateEntropyBytes is the number of random bytes hashed into a state value.
const stateEntropyBytes = 32

// NewState returns a fresh CSRF state value for one login attempt: the hex
// SHA-256 of 32 bytes from crypto/rand. An unavailable random source is
// returned as an error and must abort the login.
func NewState() (string, error) {
	b := make([]byte, stateEntropyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes for state: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
