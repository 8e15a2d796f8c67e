package config

import "time"

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Spotify: SpotifyConfig{
			APIBaseURL:      "https://api.spotify.com/v1",
			AccountsBaseURL: "https://accounts.spotify.com",
		},
		Auth: AuthConfig{
			RedirectURI:  "http://localhost:6894",
			LoginTimeout: Duration(5 * time.Minute),
		},
		Lyrics: LyricsConfig{
			BaseURL: "https://api.lyrics.ovh",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
// LoginTimeout is not touched: zero means "wait forever".
func (c *Config) ApplyDefaults() {
	d := Default()

	// Spotify
	if c.Spotify.APIBaseURL == "" {
		c.Spotify.APIBaseURL = d.Spotify.APIBaseURL
	}
	if c.Spotify.AccountsBaseURL == "" {
		c.Spotify.AccountsBaseURL = d.Spotify.AccountsBaseURL
	}

	// Auth
	if c.Auth.RedirectURI == "" {
		c.Auth.RedirectURI = d.Auth.RedirectURI
	}

	// Lyrics
	if c.Lyrics.BaseURL == "" {
		c.Lyrics.BaseURL = d.Lyrics.BaseURL
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}
