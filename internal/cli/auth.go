package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	apperrors "github.com/tessro/spotify-cli/internal/errors"
	"github.com/tessro/spotify-cli/internal/spotify/auth"
	"github.com/tessro/spotify-cli/internal/styles"
	"github.com/tessro/spotify-cli/internal/wizard"
)

var (
	loginNoBrowser bool
	loginForce     bool
	resetYes       bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Opens your browser to login to your Spotify account",
	Long: `Log in to Spotify with the OAuth authorization code flow.

A local server on the redirect URI's port (6894 by default) receives the
browser redirect. The command blocks until the login is completed, denied,
or times out (auth.login_timeout).`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var resetCmd = &cobra.Command{
	Use:     "reset",
	Aliases: []string{"logout"},
	Short:   "Resets all data that the application has stored",
	Long:    `Deletes the stored client ID, client secret and tokens.`,
	Args:    cobra.NoArgs,
	RunE:    runReset,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show login status",
	Long:  `Shows whether you are logged in, as whom, and when the access token expires.`,
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	loginCmd.Flags().BoolVar(&loginNoBrowser, "no-browser", false, "print the login URL instead of opening a browser")
	loginCmd.Flags().BoolVarP(&loginForce, "force", "f", false, "log in again without asking when already logged in")
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "skip the confirmation prompt")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(statusCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	sess, err := getSession()
	if err != nil {
		return err
	}

	_, err = sess.Login(ctx, auth.LoginOptions{NoBrowser: loginNoBrowser, Force: loginForce})
	if errors.Is(err, apperrors.ErrLoginCancelled) || errors.Is(err, wizard.ErrCancelled) {
		if sess.LoggedIn() && !wizard.IsTerminal() {
			return failure("cancelled", "You are already logged in! Use --force to log in again.")
		}
		return failure("cancelled", "Cancelled.")
	}
	if err != nil {
		return err
	}

	// Profile lookup is a confirmation only; the tokens are already saved.
	c, err := getClient()
	if err != nil {
		return err
	}
	user, err := c.GetCurrentUser(ctx)
	if err != nil {
		logger.Warn("could not fetch profile", "err", err)
		return success("authenticated", "Login successful!")
	}

	if JSONOutput() {
		return printJSON(map[string]string{
			"status":       "authenticated",
			"user_id":      user.ID,
			"display_name": user.DisplayName,
			"product":      user.Product,
		})
	}

	fmt.Println(styles.Good.Render("Login successful!"))
	fmt.Println(styles.Box(
		styles.Field{Label: "Username", Value: user.DisplayName},
		styles.Field{Label: "ID", Value: user.ID},
	))
	return nil
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetYes {
		if !wizard.IsTerminal() {
			return apperrors.WithSuggestion(
				errors.New("refusing to reset without confirmation"),
				"Run 'spotify-cli reset --yes' to reset non-interactively",
			)
		}
		ok, err := wizard.Prompter{}.Confirm("Are you sure you want to reset all data?")
		if err != nil && !errors.Is(err, wizard.ErrCancelled) {
			return err
		}
		if !ok {
			return failure("cancelled", "Cancelled.")
		}
	}

	if err := resetCredentials(); err != nil {
		return err
	}

	return success("reset", "All config values has been reset.")
}

// resetCredentials clears the credential store. A file that cannot be
// loaded is removed unread.
func resetCredentials() error {
	sess, err := getSession()
	if err != nil {
		if !errors.Is(err, apperrors.ErrStoreIO) {
			return err
		}
		logger.Warn("credential store unreadable, removing it", "err", err)
		return auth.RemoveStore(cfg.Auth.CredentialsFile)
	}
	return sess.Reset()
}

type statusResult struct {
	LoggedIn    bool       `json:"logged_in"`
	ClientID    string     `json:"client_id,omitempty"`
	UserID      string     `json:"user_id,omitempty"`
	DisplayName string     `json:"display_name,omitempty"`
	Product     string     `json:"product,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	sess, err := getSession()
	if err != nil {
		return err
	}

	var res statusResult
	if reg, ok := store.Client(); ok {
		res.ClientID = reg.ClientID
	}

	if !sess.LoggedIn() {
		if JSONOutput() {
			return printJSON(res)
		}
		fmt.Println(styles.Bad.Render("Not logged in."))
		fmt.Println("Run 'spotify-cli login' to connect your Spotify account.")
		return nil
	}
	res.LoggedIn = true

	c, err := getClient()
	if err != nil {
		return err
	}
	user, profileErr := c.GetCurrentUser(ctx)
	if profileErr != nil {
		res.Error = profileErr.Error()
	} else {
		res.UserID = user.ID
		res.DisplayName = user.DisplayName
		res.Product = user.Product
	}

	// Read after the profile call, which may have refreshed the token.
	if tokens, ok := sess.Tokens(); ok && !tokens.ExpiresAt.IsZero() {
		exp := tokens.ExpiresAt
		res.ExpiresAt = &exp
	}

	if JSONOutput() {
		return printJSON(res)
	}

	t := NewTableWriter(cmd.OutOrStdout())
	t.Row("Logged in:", styles.Good.Render("yes"))
	if res.DisplayName != "" {
		t.Row("User:", fmt.Sprintf("%s (%s)", res.DisplayName, res.UserID))
		t.Row("Account:", res.Product)
	}
	if res.ClientID != "" {
		t.Row("Client ID:", TruncateString(res.ClientID, 12))
	}
	if res.ExpiresAt != nil {
		t.Row("Token expires:", humanize.Time(*res.ExpiresAt))
	}
	t.Flush()

	if profileErr != nil {
		fmt.Println(styles.Warn.Render(apperrors.Format(profileErr)))
	}
	return nil
}
