package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"html"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	apperrors "github.com/tessro/spotify-cli/internal/errors"
)

// ExchangeFunc trades an authorization code for tokens. It runs inside the
// callback handler after the success page has been sent.
type ExchangeFunc func(ctx context.Context, code string) (*TokenSet, error)

type callbackResult struct {
	tokens *TokenSet
	err    error
}

// CallbackServer receives the single authorization redirect from Spotify.
// Only GET / is the callback route; anything else is a 404 and leaves the
// flow untouched. The first request to / decides the outcome and later ones
// get 410 Gone.
type CallbackServer struct {
	state    string
	exchange ExchangeFunc

	server   *http.Server
	listener net.Listener

	ctx     context.Context
	once    sync.Once
	claimed chan struct{}
	result  chan callbackResult
}

// NewCallbackServer binds addr and returns a server that accepts callbacks
// carrying state. A bind failure wraps ErrBind; holding the port is what
// keeps two logins from running at once.
func NewCallbackServer(addr, state string, exchange ExchangeFunc) (*CallbackServer, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to listen on %s: %v", apperrors.ErrBind, addr, err)
	}

	cs := &CallbackServer{
		state:    state,
		exchange: exchange,
		listener: listener,
		ctx:      context.Background(),
		claimed:  make(chan struct{}),
		result:   make(chan callbackResult, 1),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", cs.handleCallback)

	cs.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
	}

	return cs, nil
}

// Start begins serving in the background. ctx bounds the token exchange the
// handler runs; it is not tied to the browser's connection.
func (cs *CallbackServer) Start(ctx context.Context) {
	cs.ctx = ctx
	go func() {
		_ = cs.server.Serve(cs.listener)
	}()
}

// Wait blocks until the callback has been resolved or ctx is done. On
// success it returns the exchanged tokens. Once the callback has arrived, ctx
// no longer applies: the handler's outcome is always returned, bounded by
// the context given to Start.
func (cs *CallbackServer) Wait(ctx context.Context) (*TokenSet, error) {
	select {
	case res := <-cs.result:
		return res.tokens, res.err
	case <-cs.claimed:
	case <-ctx.Done():
		select {
		case <-cs.claimed:
		default:
			return nil, ctx.Err()
		}
	}
	res := <-cs.result
	return res.tokens, res.err
}

// Shutdown stops the listener and waits for an in-flight handler.
func (cs *CallbackServer) Shutdown(ctx context.Context) error {
	return cs.server.Shutdown(ctx)
}

// Port returns the port the server is listening on.
func (cs *CallbackServer) Port() int {
	return cs.listener.Addr().(*net.TCPAddr).Port
}

func (cs *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	first := false
	cs.once.Do(func() {
		first = true
		close(cs.claimed)
	})
	if !first {
		writePage(w, http.StatusGone, "Login already handled", "This login attempt has already been processed. You may close this page.")
		return
	}

	query := r.URL.Query()

	if e := query.Get("error"); e != "" {
		writePage(w, http.StatusBadRequest, "Login failed", "Spotify reported: "+e+". Please refer to the command line.")
		cs.result <- callbackResult{err: fmt.Errorf("%w: %s", apperrors.ErrAuthorizationDenied, e)}
		return
	}

	got := query.Get("state")
	if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(cs.state)) != 1 {
		writePage(w, http.StatusBadRequest, "Login failed", "Missing state parameter, or it is invalid.")
		cs.result <- callbackResult{err: apperrors.ErrStateMismatch}
		return
	}

	code := query.Get("code")
	if code == "" {
		writePage(w, http.StatusBadRequest, "Login failed", "No authorization code was returned. Please refer to the command line.")
		cs.result <- callbackResult{err: fmt.Errorf("%w: callback carried no authorization code", apperrors.ErrTokenExchange)}
		return
	}

	writePage(w, http.StatusOK, "Login successful", "Login successful. Please refer to the command line.\nYou may now close this page.")
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	tokens, err := cs.exchange(cs.ctx, code)
	cs.result <- callbackResult{tokens: tokens, err: err}
}

func writePage(w http.ResponseWriter, status int, title, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>%[1]s</title></head>
<body>
<h1>%[1]s</h1>
<p>%[2]s</p>
</body>
</html>`, html.EscapeString(title), html.EscapeString(message))
}

// ListenAddr returns the address to bind for redirectURI: all interfaces on
// the URI's port.
func ListenAddr(redirectURI string) (string, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return "", fmt.Errorf("invalid redirect URI %q: %w", redirectURI, err)
	}
	port := u.Port()
	if port == "" {
		return "", fmt.Errorf("redirect URI %q has no port", redirectURI)
	}
	if _, err := strconv.Atoi(port); err != nil {
		return "", fmt.Errorf("redirect URI %q has an invalid port: %w", redirectURI, err)
	}
	return ":" + port, nil
}
