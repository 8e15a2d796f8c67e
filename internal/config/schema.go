package config

import "time"

// Config is the root configuration structure.
type Config struct {
	Spotify SpotifyConfig `toml:"spotify"`
	Auth    AuthConfig    `toml:"auth"`
	Lyrics  LyricsConfig  `toml:"lyrics"`
	Log     LogConfig     `toml:"log"`
}

// SpotifyConfig holds Spotify application and API settings.
// ClientID and ClientSecret only seed the first login; the registration
// persisted in the credential store takes precedence afterwards.
type SpotifyConfig struct {
	ClientID        string `toml:"client_id" env:"CLIENT_ID"`
	ClientSecret    string `toml:"client_secret" env:"CLIENT_SECRET"`
	APIBaseURL      string `toml:"api_base_url" env:"API_BASE_URL"`
	AccountsBaseURL string `toml:"accounts_base_url" env:"ACCOUNTS_BASE_URL"`
}

// AuthConfig holds login flow and credential storage settings.
type AuthConfig struct {
	RedirectURI     string   `toml:"redirect_uri" env:"REDIRECT_URI"`
	LoginTimeout    Duration `toml:"login_timeout" env:"LOGIN_TIMEOUT"`
	CredentialsFile string   `toml:"credentials_file" env:"CREDENTIALS_FILE"`
}

// LyricsConfig holds lyrics lookup settings.
type LyricsConfig struct {
	BaseURL string `toml:"base_url" env:"LYRICS_BASE_URL"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level" env:"LOG_LEVEL"`
	File  string `toml:"file" env:"LOG_FILE"`
}

// Duration is a time.Duration that reads and writes as a string like "5m".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}
