package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Authentication and session failures.
var (
	ErrBind                = errors.New("callback port unavailable")
	ErrAuthorizationDenied = errors.New("authorization denied")
	ErrStateMismatch       = errors.New("callback state mismatch")
	ErrTokenExchange       = errors.New("token exchange failed")
	ErrRefresh             = errors.New("token refresh failed")
	ErrNotLoggedIn         = errors.New("not logged in")
	ErrStoreIO             = errors.New("credential store I/O failed")
	ErrLoginCancelled      = errors.New("login cancelled")
)

// Playback and general failures.
var (
	ErrNoActiveDevice = errors.New("no active device")
	ErrTrackNotFound  = errors.New("track not found")
	ErrNotFound       = errors.New("not found")
	ErrRateLimited    = errors.New("rate limited")
	ErrTimeout        = errors.New("timed out")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// CLIError wraps an error with a user-friendly suggestion.
type CLIError struct {
	Err        error
	Suggestion string
}

func (e *CLIError) Error() string {
	return e.Err.Error()
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &CLIError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) && cliErr.Suggestion != "" {
		return cliErr.Suggestion
	}

	switch {
	case errors.Is(err, ErrNotLoggedIn):
		return "Run 'spotify-cli login' to sign in to Spotify"
	case errors.Is(err, ErrRefresh), errors.Is(err, ErrTokenExchange):
		return "Run 'spotify-cli login' to sign in again"
	case errors.Is(err, ErrBind):
		return "Another login may be in progress. Wait for it to finish and try again"
	case errors.Is(err, ErrStateMismatch):
		return "The callback did not match this login attempt. Start a new login"
	case errors.Is(err, ErrAuthorizationDenied):
		return "Access was not granted in the browser. Run 'spotify-cli login' to try again"
	case errors.Is(err, ErrStoreIO):
		return "Run 'spotify-cli reset' to discard the credentials file, or check its permissions"
	case errors.Is(err, ErrInvalidConfig):
		return "Run 'spotify-cli config show' to inspect the configuration"
	}

	errStr := strings.ToLower(err.Error())

	if errors.Is(err, ErrNoActiveDevice) || strings.Contains(errStr, "no active device") {
		return "Open Spotify on a device and start playing"
	}

	if strings.Contains(errStr, "premium required") || strings.Contains(errStr, "restricted device") {
		return "This feature requires Spotify Premium"
	}

	if errors.Is(err, ErrRateLimited) || strings.Contains(errStr, "rate limit") {
		return "Too many requests. Wait a moment and try again"
	}

	if errors.Is(err, ErrTimeout) || strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return "Check your internet connection and try again"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}
