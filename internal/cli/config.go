package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/tessro/spotify-cli/internal/config"
	"github.com/tessro/spotify-cli/internal/spotify/auth"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Commands for viewing and creating the spotify-cli configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration after defaults and environment overrides.`,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long:  `Create a new configuration file with default values.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration and credential file locations",
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// redacted returns a copy of cfg safe to print.
func redacted(c *config.Config) config.Config {
	out := *c
	if out.Spotify.ClientSecret != "" {
		out.Spotify.ClientSecret = "********"
	}
	return out
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	shown := redacted(cfg)
	if JSONOutput() {
		return printJSON(shown)
	}

	// Pretty print as TOML
	encoder := toml.NewEncoder(os.Stdout)
	encoder.Indent = "  "
	return encoder.Encode(shown)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists at %s", configPath)
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(configPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	_, _ = fmt.Fprintln(f, "# spotify-cli configuration")
	_, _ = fmt.Fprintln(f, "# Every value can be overridden with "+config.EnvPrefix+"* environment variables.")
	_, _ = fmt.Fprintln(f, "")

	encoder := toml.NewEncoder(f)
	encoder.Indent = "  "
	if err := encoder.Encode(config.Default()); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if JSONOutput() {
		return printJSON(map[string]string{
			"status": "created",
			"path":   configPath,
		})
	}

	fmt.Printf("Created config file: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Create an app at https://developer.spotify.com/dashboard with redirect URI " + cfg.Auth.RedirectURI)
	fmt.Println("  2. Run 'spotify-cli login' and enter its client ID and secret")
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	credentials := cfg.Auth.CredentialsFile
	if credentials == "" {
		p, err := auth.DefaultStorePath()
		if err != nil {
			return err
		}
		credentials = p
	}

	if JSONOutput() {
		return printJSON(map[string]string{
			"config":      getConfigPath(),
			"credentials": credentials,
		})
	}

	t := NewTableWriter(cmd.OutOrStdout())
	t.Row("Config:", getConfigPath())
	t.Row("Credentials:", credentials)
	t.Flush()
	return nil
}

func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultPath()
}
