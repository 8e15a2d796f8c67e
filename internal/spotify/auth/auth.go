package auth

import (
	"strconv"

	"golang.org/x/oauth2"
)

const (
	// SpotifyAuthURL is the Spotify authorization endpoint.
	SpotifyAuthURL = "https://accounts.spotify.com/authorize"

	// SpotifyTokenURL is the Spotify token endpoint.
	SpotifyTokenURL = "https://accounts.spotify.com/api/token"

	// CallbackPort must match the redirect URI registered with the
	// Spotify application.
	CallbackPort = 6894
)

// DefaultRedirectURI is the callback URI served by the loopback listener.
var DefaultRedirectURI = "http://localhost:" + strconv.Itoa(CallbackPort)

// DefaultScopes are the Spotify scopes requested at login, in order.
var DefaultScopes = []string{
	"user-read-playback-state",
	"user-modify-playback-state",
	"user-read-currently-playing",
	"user-library-read",
	"app-remote-control",
	"user-read-recently-played",
	"playlist-read-collaborative",
	"playlist-read-private",
}

// BuildAuthURL constructs the Spotify authorization URL. It performs no I/O;
// the same inputs always produce the same string. Scopes are joined with
// spaces in the order given and the consent dialog is always shown.
func BuildAuthURL(clientID, redirectURI string, scopes []string, state string) string {
	return buildAuthURL(SpotifyAuthURL, clientID, redirectURI, scopes, state)
}

func buildAuthURL(authURL, clientID, redirectURI string, scopes []string, state string) string {
	cfg := oauth2.Config{
		ClientID:    clientID,
		RedirectURL: redirectURI,
		Scopes:      scopes,
		Endpoint:    oauth2.Endpoint{AuthURL: authURL},
	}
	return cfg.AuthCodeURL(state, oauth2.SetAuthURLParam("show_dialog", "true"))
}
