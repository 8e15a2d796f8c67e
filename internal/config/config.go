package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every environment override, e.g.
// SPOTIFY_CLI_CLIENT_ID or SPOTIFY_CLI_LOGIN_TIMEOUT.
const EnvPrefix = "SPOTIFY_CLI_"

// AppName names the config directory and dotfile.
const AppName = "spotify-cli"

// Load reads configuration from standard locations with environment overrides.
// Search order: ~/.spotify-clirc, $XDG_CONFIG_HOME/spotify-cli/config.toml, ~/.config/spotify-cli/config.toml
func Load() (*Config, error) {
	return load(findConfigFile())
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return load(path)
}

func load(path string) (*Config, error) {
	cfg := &Config{}
	// Seeded before decoding so an explicit "0s" in the file survives ApplyDefaults.
	cfg.Auth.LoginTimeout = Default().Auth.LoginTimeout

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	cfg.ApplyDefaults()
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DefaultPath returns the path 'config init' writes to.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + AppName + "rc"
	}
	return filepath.Join(home, "."+AppName+"rc")
}

// findConfigFile returns the first existing config file path.
func findConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	paths := []string{
		filepath.Join(home, "."+AppName+"rc"),
	}

	// XDG_CONFIG_HOME or default
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	paths = append(paths, filepath.Join(xdgConfig, AppName, "config.toml"))

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// applyEnvOverrides applies SPOTIFY_CLI_* environment variables to the config.
// Unset variables leave the decoded values alone.
func applyEnvOverrides(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	return nil
}
