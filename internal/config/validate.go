package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Spotify.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("spotify: %w", err))
	}
	if err := c.Auth.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("auth: %w", err))
	}
	if err := c.Lyrics.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("lyrics: %w", err))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}

	return errors.Join(errs...)
}

// Validate checks SpotifyConfig for errors.
func (c *SpotifyConfig) Validate() error {
	if err := validateBaseURL(c.APIBaseURL); err != nil {
		return fmt.Errorf("invalid api_base_url: %w", err)
	}
	if err := validateBaseURL(c.AccountsBaseURL); err != nil {
		return fmt.Errorf("invalid accounts_base_url: %w", err)
	}
	return nil
}

// Validate checks AuthConfig for errors. The redirect URI must be an http
// URI with an explicit port, since the callback listener binds that port.
func (c *AuthConfig) Validate() error {
	if c.RedirectURI != "" {
		u, err := url.Parse(c.RedirectURI)
		if err != nil {
			return fmt.Errorf("invalid redirect_uri: %w", err)
		}
		if u.Scheme != "http" {
			return fmt.Errorf("invalid redirect_uri: scheme must be http, got %q", u.Scheme)
		}
		port, err := strconv.Atoi(u.Port())
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("invalid redirect_uri: %q has no valid port", c.RedirectURI)
		}
	}
	if c.LoginTimeout < 0 {
		return errors.New("login_timeout must be non-negative")
	}
	return nil
}

// Validate checks LyricsConfig for errors.
func (c *LyricsConfig) Validate() error {
	if err := validateBaseURL(c.BaseURL); err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	return nil
}

// Validate checks LogConfig for errors.
func (c *LogConfig) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Level)
	}
	return nil
}

func validateBaseURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}
