package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	apperrors "github.com/tessro/spotify-cli/internal/errors"
)

// Prompter asks the user for input during login.
type Prompter interface {
	// ClientRegistration asks for the Spotify application's client ID and
	// secret.
	ClientRegistration() (ClientRegistration, error)
	// Confirm asks a yes/no question.
	Confirm(title string) (bool, error)
}

// SessionOptions configures a Session. Store and Exchanger are required.
type SessionOptions struct {
	Store     *Store
	Exchanger TokenExchanger

	// OpenBrowser opens the authorization URL. Nil means the URL is only
	// printed.
	OpenBrowser func(url string) error
	// Prompter is consulted for a missing client registration and for
	// confirmation when already logged in. Nil disables prompting.
	Prompter Prompter
	Logger   *log.Logger
	Out      io.Writer
	Now      func() time.Time

	// Client is used on first login when the store has no registration.
	Client       ClientRegistration
	AuthURL      string
	RedirectURI  string
	ListenAddr   string
	Scopes       []string
	LoginTimeout time.Duration
}

// LoginOptions controls a single login.
type LoginOptions struct {
	// NoBrowser prints the authorization URL instead of opening it.
	NoBrowser bool
	// Force logs in again without asking when tokens are already stored.
	Force bool
}

// Session owns the user's credentials: it runs the login flow and hands out
// valid access tokens to authenticated callers.
type Session struct {
	store     *Store
	exchanger TokenExchanger
	open      func(string) error
	prompter  Prompter
	logger    *log.Logger
	out       io.Writer
	now       func() time.Time

	client       ClientRegistration
	authURL      string
	redirectURI  string
	listenAddr   string
	scopes       []string
	loginTimeout time.Duration
}

// NewSession creates a Session from opts, filling in Spotify defaults.
func NewSession(opts SessionOptions) *Session {
	s := &Session{
		store:        opts.Store,
		exchanger:    opts.Exchanger,
		open:         opts.OpenBrowser,
		prompter:     opts.Prompter,
		logger:       opts.Logger,
		out:          opts.Out,
		now:          opts.Now,
		client:       opts.Client,
		authURL:      opts.AuthURL,
		redirectURI:  opts.RedirectURI,
		listenAddr:   opts.ListenAddr,
		scopes:       opts.Scopes,
		loginTimeout: opts.LoginTimeout,
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if s.out == nil {
		s.out = io.Discard
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.authURL == "" {
		s.authURL = SpotifyAuthURL
	}
	if s.redirectURI == "" {
		s.redirectURI = DefaultRedirectURI
	}
	if len(s.scopes) == 0 {
		s.scopes = DefaultScopes
	}
	return s
}

// EnsureValidAccessToken returns an access token that is valid right now.
// A stored token that has not expired is returned without any network call;
// otherwise the refresh token is exchanged once and the result persisted.
// Refresh and store errors are returned unchanged.
func (s *Session) EnsureValidAccessToken(ctx context.Context) (string, error) {
	tokens, ok := s.store.Tokens()
	if !ok {
		return "", apperrors.ErrNotLoggedIn
	}

	if s.now().Before(tokens.ExpiresAt) {
		return tokens.AccessToken, nil
	}

	client, _ := s.store.Client()
	s.logger.Debug("refreshing access token", "expired_at", tokens.ExpiresAt)

	fresh, err := s.exchanger.Refresh(ctx, client, tokens.RefreshToken)
	if err != nil {
		return "", err
	}
	if fresh.TokenType == "" {
		fresh.TokenType = tokens.TokenType
	}

	if err := s.store.SaveTokens(*fresh); err != nil {
		return "", err
	}
	s.logger.Debug("stored refreshed token", "expires_at", fresh.ExpiresAt)

	return fresh.AccessToken, nil
}

// LoggedIn reports whether a refresh token is stored.
func (s *Session) LoggedIn() bool {
	_, ok := s.store.Tokens()
	return ok
}

// Tokens returns the stored tokens, if any.
func (s *Session) Tokens() (TokenSet, bool) {
	return s.store.Tokens()
}

// Reset forgets the client registration and all tokens.
func (s *Session) Reset() error {
	if err := s.store.Clear(); err != nil {
		return err
	}
	s.logger.Debug("cleared credentials", "path", s.store.Path())
	return nil
}

// Login runs the authorization code flow. It blocks until the browser
// redirect has been handled, the login timeout elapses, or ctx is done, and
// persists the issued tokens on success. The timeout only covers waiting for
// the redirect; a code exchange already under way is allowed to finish.
func (s *Session) Login(ctx context.Context, opts LoginOptions) (*TokenSet, error) {
	client, err := s.clientRegistration()
	if err != nil {
		return nil, err
	}

	if s.LoggedIn() && !opts.Force {
		if s.prompter == nil {
			return nil, apperrors.ErrLoginCancelled
		}
		again, err := s.prompter.Confirm("You are already logged in. Log out and log in again?")
		if err != nil {
			return nil, err
		}
		if !again {
			return nil, apperrors.ErrLoginCancelled
		}
	}

	state, err := NewState()
	if err != nil {
		return nil, err
	}

	addr := s.listenAddr
	if addr == "" {
		addr, err = ListenAddr(s.redirectURI)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidConfig, err)
		}
	}

	exchange := func(ctx context.Context, code string) (*TokenSet, error) {
		s.logger.Debug("exchanging authorization code")
		return s.exchanger.Exchange(ctx, client, code, s.redirectURI)
	}

	server, err := NewCallbackServer(addr, state, exchange)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("callback server listening", "addr", addr)

	server.Start(ctx)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	authURL := buildAuthURL(s.authURL, client.ClientID, s.redirectURI, s.scopes, state)
	s.openAuthURL(authURL, opts.NoBrowser)

	waitCtx := ctx
	if s.loginTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, s.loginTimeout)
		defer cancel()
	}

	tokens, err := server.Wait(waitCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: no login callback within %s", apperrors.ErrTimeout, s.loginTimeout)
		}
		return nil, err
	}

	if tokens.TokenType == "" {
		tokens.TokenType = "Bearer"
	}
	if err := s.store.SaveTokens(*tokens); err != nil {
		return nil, err
	}
	s.logger.Debug("stored tokens", "expires_at", tokens.ExpiresAt)

	return tokens, nil
}

// clientRegistration returns the stored registration, falling back to the
// configured one and then to a prompt. A registration not yet in the store
// is persisted.
func (s *Session) clientRegistration() (ClientRegistration, error) {
	if reg, ok := s.store.Client(); ok && reg.Valid() {
		return reg, nil
	}

	reg := s.client
	if !reg.Valid() {
		if s.prompter == nil {
			return ClientRegistration{}, apperrors.WithSuggestion(
				fmt.Errorf("%w: no Spotify client ID and secret", apperrors.ErrInvalidConfig),
				"Set spotify.client_id and spotify.client_secret, or run 'spotify-cli login' in a terminal",
			)
		}
		var err error
		reg, err = s.prompter.ClientRegistration()
		if err != nil {
			return ClientRegistration{}, err
		}
		if !reg.Valid() {
			return ClientRegistration{}, fmt.Errorf("%w: client ID and secret are required", apperrors.ErrInvalidConfig)
		}
	}

	if err := s.store.SaveClient(reg); err != nil {
		return ClientRegistration{}, err
	}
	return reg, nil
}

func (s *Session) openAuthURL(authURL string, noBrowser bool) {
	if noBrowser || s.open == nil {
		fmt.Fprintf(s.out, "Open this URL in your browser to log in:\n\n  %s\n\n", authURL)
		return
	}

	fmt.Fprintln(s.out, "Opening your browser to log in to Spotify...")
	if err := s.open(authURL); err != nil {
		s.logger.Warn("could not open browser", "err", err)
		fmt.Fprintf(s.out, "Open this URL in your browser to log in:\n\n  %s\n\n", authURL)
	}
}
