package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tessro/spotify-cli/internal/errors"
)

const testState = "expected_state"

type fakeExchange struct {
	calls atomic.Int32
	code  atomic.Value
	err   error
}

func (f *fakeExchange) fn(ctx context.Context, code string) (*TokenSet, error) {
	f.calls.Add(1)
	f.code.Store(code)
	if f.err != nil {
		return nil, f.err
	}
	return &TokenSet{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer"}, nil
}

func startCallbackServer(t *testing.T, ex *fakeExchange) *CallbackServer {
	t.Helper()
	cs, err := NewCallbackServer("127.0.0.1:0", testState, ex.fn)
	require.NoError(t, err)
	cs.Start(context.Background())
	t.Cleanup(func() { _ = cs.Shutdown(context.Background()) })
	return cs
}

func hit(t *testing.T, cs *CallbackServer, pathAndQuery string) (int, string) {
	t.Helper()
	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d%s", cs.Port(), pathAndQuery))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func waitResult(t *testing.T, cs *CallbackServer) (*TokenSet, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return cs.Wait(ctx)
}

func TestCallbackServerSuccess(t *testing.T) {
	ex := &fakeExchange{}
	cs := startCallbackServer(t, ex)
	assert.NotZero(t, cs.Port())

	status, body := hit(t, cs, "/?code=ABC123&state="+testState)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Login successful")
	assert.NotContains(t, body, testState, "state must not be echoed")

	tokens, err := waitResult(t, cs)
	require.NoError(t, err)
	assert.Equal(t, "access", tokens.AccessToken)
	assert.Equal(t, int32(1), ex.calls.Load())
	assert.Equal(t, "ABC123", ex.code.Load())
}

func TestCallbackServerStateMismatch(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"wrong state", "/?code=ABC123&state=forged"},
		{"missing state", "/?code=ABC123"},
		{"empty state", "/?code=ABC123&state="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := &fakeExchange{}
			cs := startCallbackServer(t, ex)

			status, body := hit(t, cs, tt.query)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Contains(t, body, "Missing state parameter, or it is invalid.")

			_, err := waitResult(t, cs)
			assert.ErrorIs(t, err, apperrors.ErrStateMismatch)
			assert.Zero(t, ex.calls.Load(), "exchange must not run on a state mismatch")
		})
	}
}

func TestCallbackServerAuthorizationDenied(t *testing.T) {
	for _, state := range []string{testState, "forged", ""} {
		t.Run("state="+state, func(t *testing.T) {
			ex := &fakeExchange{}
			cs := startCallbackServer(t, ex)

			status, _ := hit(t, cs, "/?error=access_denied&state="+state)
			assert.Equal(t, http.StatusBadRequest, status)

			_, err := waitResult(t, cs)
			assert.ErrorIs(t, err, apperrors.ErrAuthorizationDenied)
			assert.Contains(t, err.Error(), "access_denied")
			assert.Zero(t, ex.calls.Load(), "exchange must not run when authorization was denied")
		})
	}
}

func TestCallbackServerIgnoresOtherPaths(t *testing.T) {
	ex := &fakeExchange{}
	cs := startCallbackServer(t, ex)

	status, _ := hit(t, cs, "/favicon.ico")
	assert.Equal(t, http.StatusNotFound, status)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := cs.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded, "favicon must not resolve the flow")

	status, _ = hit(t, cs, "/?code=ABC123&state="+testState)
	assert.Equal(t, http.StatusOK, status)

	_, err = waitResult(t, cs)
	require.NoError(t, err)
	assert.Equal(t, int32(1), ex.calls.Load())
}

func TestCallbackServerOnlyFirstCallbackCounts(t *testing.T) {
	ex := &fakeExchange{}
	cs := startCallbackServer(t, ex)

	status, _ := hit(t, cs, "/?code=first&state="+testState)
	assert.Equal(t, http.StatusOK, status)

	status, _ = hit(t, cs, "/?code=second&state="+testState)
	assert.Equal(t, http.StatusGone, status)

	_, err := waitResult(t, cs)
	require.NoError(t, err)
	assert.Equal(t, int32(1), ex.calls.Load())
	assert.Equal(t, "first", ex.code.Load())
}

func TestCallbackServerExchangeFailure(t *testing.T) {
	ex := &fakeExchange{err: fmt.Errorf("%w: invalid_grant", apperrors.ErrTokenExchange)}
	cs := startCallbackServer(t, ex)

	status, _ := hit(t, cs, "/?code=stale&state="+testState)
	assert.Equal(t, http.StatusOK, status)

	_, err := waitResult(t, cs)
	assert.ErrorIs(t, err, apperrors.ErrTokenExchange)
}

func TestCallbackServerMissingCode(t *testing.T) {
	ex := &fakeExchange{}
	cs := startCallbackServer(t, ex)

	status, body := hit(t, cs, "/?state="+testState)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, "No authorization code")

	_, err := waitResult(t, cs)
	assert.ErrorIs(t, err, apperrors.ErrTokenExchange)
	assert.Zero(t, ex.calls.Load())
}

func TestCallbackServerWaitOutlastsDeadlineOnceClaimed(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	cs, err := NewCallbackServer("127.0.0.1:0", testState, func(ctx context.Context, code string) (*TokenSet, error) {
		close(started)
		<-release
		return &TokenSet{AccessToken: "late", RefreshToken: "refresh"}, nil
	})
	require.NoError(t, err)
	cs.Start(context.Background())

	go func() {
		resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/?code=ABC123&state=%s", cs.Port(), testState))
		if err == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	time.AfterFunc(100*time.Millisecond, func() { close(release) })

	tokens, err := cs.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "late", tokens.AccessToken)
	assert.ErrorIs(t, ctx.Err(), context.DeadlineExceeded)

	require.NoError(t, cs.Shutdown(context.Background()))
}

func TestCallbackServerPortInUse(t *testing.T) {
	first := startCallbackServer(t, &fakeExchange{})

	_, err := NewCallbackServer(fmt.Sprintf("127.0.0.1:%d", first.Port()), testState, (&fakeExchange{}).fn)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrBind)
}

func TestCallbackServerWaitTimeout(t *testing.T) {
	cs := startCallbackServer(t, &fakeExchange{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := cs.Wait(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestListenAddr(t *testing.T) {
	tests := []struct {
		uri     string
		want    string
		wantErr bool
	}{
		{"http://localhost:6894", ":6894", false},
		{"http://127.0.0.1:7000/", ":7000", false},
		{"http://localhost", "", true},
		{"http://localhost:port", "", true},
		{"://bad", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			got, err := ListenAddr(tt.uri)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListenAddrDefaultRedirect(t *testing.T) {
	got, err := ListenAddr(DefaultRedirectURI)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf(":%d", CallbackPort), got)
}
