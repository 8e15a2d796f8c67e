package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/tessro/spotify-cli/internal/browser"
	"github.com/tessro/spotify-cli/internal/config"
	apperrors "github.com/tessro/spotify-cli/internal/errors"
	"github.com/tessro/spotify-cli/internal/logging"
	"github.com/tessro/spotify-cli/internal/spotify/auth"
	"github.com/tessro/spotify-cli/internal/spotify/client"
	"github.com/tessro/spotify-cli/internal/styles"
	"github.com/tessro/spotify-cli/internal/wizard"
)

var (
	cfgFile string
	jsonOut bool
	verbose bool

	cfg       *config.Config
	logger    *log.Logger
	logCloser io.Closer

	store   *auth.Store
	session *auth.Session
)

var rootCmd = &cobra.Command{
	Use:   config.AppName,
	Short: "An unofficial command line interface for Spotify",
	Long: `spotify-cli controls Spotify playback from the terminal.

Run 'spotify-cli login' once to connect your Spotify account.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeResources()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.spotify-clirc)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func initConfig() error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("%w: failed to load config: %v", apperrors.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidConfig, err)
	}

	logger, logCloser, err = logging.New(cfg.Log, verbose)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidConfig, err)
	}

	return nil
}

// getSession opens the credential store on first use and returns the
// session built on it.
func getSession() (*auth.Session, error) {
	if session != nil {
		return session, nil
	}

	s, err := auth.OpenStore(cfg.Auth.CredentialsFile)
	if err != nil {
		return nil, err
	}
	store = s
	logger.Debug("opened credential store", "path", store.Path())

	var prompter auth.Prompter
	if wizard.IsTerminal() {
		prompter = wizard.Prompter{RedirectURI: cfg.Auth.RedirectURI}
	}

	accounts := strings.TrimRight(cfg.Spotify.AccountsBaseURL, "/")
	session = auth.NewSession(auth.SessionOptions{
		Store:       store,
		Exchanger:   auth.NewExchanger(accounts+"/api/token", nil),
		OpenBrowser: browser.Open,
		Prompter:    prompter,
		Logger:      logger,
		Out:         os.Stdout,
		Client: auth.ClientRegistration{
			ClientID:     cfg.Spotify.ClientID,
			ClientSecret: cfg.Spotify.ClientSecret,
		},
		AuthURL:      accounts + "/authorize",
		RedirectURI:  cfg.Auth.RedirectURI,
		LoginTimeout: cfg.Auth.LoginTimeout.Std(),
	})
	return session, nil
}

// getClient returns a Web API client authenticated through the session.
func getClient() (*client.Client, error) {
	sess, err := getSession()
	if err != nil {
		return nil, err
	}
	return client.New(sess,
		client.WithBaseURL(cfg.Spotify.APIBaseURL),
		client.WithLogger(logger),
	), nil
}

func closeResources() error {
	var errs []error
	if store != nil {
		errs = append(errs, store.Close())
		store, session = nil, nil
	}
	if logCloser != nil {
		errs = append(errs, logCloser.Close())
		logCloser = nil
	}
	return errors.Join(errs...)
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if cerr := closeResources(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, styles.Bad.Render(apperrors.Format(err)))
		os.Exit(1)
	}
}

// JSONOutput returns true if JSON output is requested.
func JSONOutput() bool {
	return jsonOut
}

// Verbose returns true if verbose output is requested.
func Verbose() bool {
	return verbose
}
