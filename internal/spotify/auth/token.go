package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	apperrors "github.com/tessro/spotify-cli/internal/errors"
)

// ClientRegistration identifies the Spotify application the user created.
type ClientRegistration struct {
	ClientID     string
	ClientSecret string
}

// Valid reports whether both halves of the registration are present.
func (c ClientRegistration) Valid() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// TokenSet is the credential material issued by the token endpoint.
// AccessToken is usable only while the current time is before ExpiresAt.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresAt    time.Time
}

// TokenExchanger trades an authorization code or a refresh token for a
// TokenSet.
type TokenExchanger interface {
	Exchange(ctx context.Context, client ClientRegistration, code, redirectURI string) (*TokenSet, error)
	Refresh(ctx context.Context, client ClientRegistration, refreshToken string) (*TokenSet, error)
}

// Exchanger talks to the Spotify token endpoint. Requests authenticate with
// HTTP Basic credentials built from the client registration.
type Exchanger struct {
	tokenURL   string
	httpClient *http.Client
}

// NewExchanger creates an Exchanger for tokenURL. An empty tokenURL means
// SpotifyTokenURL; a nil httpClient gets a 30 second timeout client.
func NewExchanger(tokenURL string, httpClient *http.Client) *Exchanger {
	if tokenURL == "" {
		tokenURL = SpotifyTokenURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Exchanger{tokenURL: tokenURL, httpClient: httpClient}
}

func (e *Exchanger) config(client ClientRegistration, redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     client.ClientID,
		ClientSecret: client.ClientSecret,
		RedirectURL:  redirectURI,
		Endpoint: oauth2.Endpoint{
			TokenURL:  e.tokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

func (e *Exchanger) context(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, e.httpClient)
}

// Exchange trades a one-time authorization code for tokens
// (grant_type=authorization_code). A rejected code is not retried.
func (e *Exchanger) Exchange(ctx context.Context, client ClientRegistration, code, redirectURI string) (*TokenSet, error) {
	tok, err := e.config(client, redirectURI).Exchange(e.context(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrTokenExchange, describe(err))
	}
	return fromOAuth2(tok), nil
}

// Refresh mints a new access token from a refresh token
// (grant_type=refresh_token). The returned RefreshToken is the provider's
// replacement when one was issued, otherwise the one passed in.
func (e *Exchanger) Refresh(ctx context.Context, client ClientRegistration, refreshToken string) (*TokenSet, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: no refresh token", apperrors.ErrRefresh)
	}

	// An empty access token forces the source to hit the token endpoint.
	src := e.config(client, "").TokenSource(e.context(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrRefresh, describe(err))
	}

	ts := fromOAuth2(tok)
	if ts.RefreshToken == "" {
		ts.RefreshToken = refreshToken
	}
	return ts, nil
}

func fromOAuth2(tok *oauth2.Token) *TokenSet {
	return &TokenSet{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.Type(),
		ExpiresAt:    tok.Expiry,
	}
}

// describe renders token endpoint failures without echoing the request.
func describe(err error) string {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		status := 0
		if re.Response != nil {
			status = re.Response.StatusCode
		}
		switch {
		case re.ErrorCode != "" && re.ErrorDescription != "":
			return fmt.Sprintf("%s - %s (status %d)", re.ErrorCode, re.ErrorDescription, status)
		case re.ErrorCode != "":
			return fmt.Sprintf("%s (status %d)", re.ErrorCode, status)
		default:
			return fmt.Sprintf("unexpected status code: %d", status)
		}
	}
	return err.Error()
}

var _ TokenExchanger = (*Exchanger)(nil)
