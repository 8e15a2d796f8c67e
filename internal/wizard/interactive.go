// Package wizard holds the interactive prompts: huh forms for login input
// and a bubbletea picker for search results.
package wizard

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/tessro/spotify-cli/internal/spotify/auth"
)

// ErrCancelled is returned when the user dismisses a prompt.
var ErrCancelled = errors.New("cancelled")

// IsTerminal returns true if stdin and stdout are both terminals.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// Prompter asks questions with huh forms. It implements auth.Prompter.
type Prompter struct {
	// RedirectURI is shown as the URI to register with the Spotify app.
	// Empty means auth.DefaultRedirectURI.
	RedirectURI string
}

// ClientRegistration asks for the Spotify app's client ID and secret.
func (p Prompter) ClientRegistration() (auth.ClientRegistration, error) {
	var reg auth.ClientRegistration

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Spotify app credentials").
				Description(p.registrationHelp()),
			huh.NewInput().
				Title("Client ID").
				Value(&reg.ClientID).
				Validate(required("client ID")),
			huh.NewInput().
				Title("Client secret").
				EchoMode(huh.EchoModePassword).
				Value(&reg.ClientSecret).
				Validate(required("client secret")),
		),
	)

	if err := form.Run(); err != nil {
		return auth.ClientRegistration{}, promptErr(err)
	}

	reg.ClientID = strings.TrimSpace(reg.ClientID)
	reg.ClientSecret = strings.TrimSpace(reg.ClientSecret)
	return reg, nil
}

// Confirm asks a yes/no question. It defaults to no.
func (Prompter) Confirm(title string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		return false, promptErr(err)
	}
	return ok, nil
}

func (p Prompter) registrationHelp() string {
	uri := p.RedirectURI
	if uri == "" {
		uri = auth.DefaultRedirectURI
	}
	return "Create an app at https://developer.spotify.com/dashboard\nand add " + uri + " as a redirect URI."
}

func required(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", what)
		}
		return nil
	}
}

func promptErr(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrCancelled
	}
	return err
}

var _ auth.Prompter = Prompter{}
