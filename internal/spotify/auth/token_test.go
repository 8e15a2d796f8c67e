package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tessro/spotify-cli/internal/errors"
)

var testClient = ClientRegistration{ClientID: "test_client", ClientSecret: "test_secret"}

type tokenResponse struct {
	AccessToken  string `json:"access_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	Scope        string `json:"scope,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Error        string `json:"error,omitempty"`
	ErrorDesc    string `json:"error_description,omitempty"`
}

func writeToken(w http.ResponseWriter, status int, resp tokenResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func TestExchangeCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok, "expected basic auth")
		assert.Equal(t, "test_client", user)
		assert.Equal(t, "test_secret", pass)

		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "ABC123", r.PostForm.Get("code"))
		assert.Equal(t, "http://localhost:6894", r.PostForm.Get("redirect_uri"))
		assert.Empty(t, r.PostForm.Get("client_secret"), "secret must only travel in the header")

		writeToken(w, http.StatusOK, tokenResponse{
			AccessToken:  "access_token_123",
			TokenType:    "Bearer",
			Scope:        "user-read-private",
			ExpiresIn:    3600,
			RefreshToken: "refresh_token_456",
		})
	}))
	defer server.Close()

	ex := NewExchanger(server.URL, server.Client())
	before := time.Now()
	tok, err := ex.Exchange(context.Background(), testClient, "ABC123", "http://localhost:6894")
	require.NoError(t, err)

	assert.Equal(t, "access_token_123", tok.AccessToken)
	assert.Equal(t, "refresh_token_456", tok.RefreshToken)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.WithinDuration(t, before.Add(time.Hour), tok.ExpiresAt, time.Second)
}

func TestExchangeCodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeToken(w, http.StatusBadRequest, tokenResponse{
			Error:     "invalid_grant",
			ErrorDesc: "Authorization code expired",
		})
	}))
	defer server.Close()

	ex := NewExchanger(server.URL, server.Client())
	_, err := ex.Exchange(context.Background(), testClient, "stale", "http://localhost:6894")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrTokenExchange)
	assert.Contains(t, err.Error(), "invalid_grant")
	assert.Contains(t, err.Error(), "400")
}

func TestRefreshAccessToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "old_refresh", r.PostForm.Get("refresh_token"))

		_, _, ok := r.BasicAuth()
		assert.True(t, ok)

		writeToken(w, http.StatusOK, tokenResponse{
			AccessToken: "new_access_token",
			TokenType:   "Bearer",
			ExpiresIn:   3600,
		})
	}))
	defer server.Close()

	ex := NewExchanger(server.URL, server.Client())
	tok, err := ex.Refresh(context.Background(), testClient, "old_refresh")
	require.NoError(t, err)

	assert.Equal(t, "new_access_token", tok.AccessToken)
	assert.Equal(t, "old_refresh", tok.RefreshToken, "refresh token retained when none returned")
}

func TestRefreshRotatesRefreshToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeToken(w, http.StatusOK, tokenResponse{
			AccessToken:  "new_access_token",
			TokenType:    "Bearer",
			ExpiresIn:    3600,
			RefreshToken: "rotated_refresh",
		})
	}))
	defer server.Close()

	ex := NewExchanger(server.URL, server.Client())
	tok, err := ex.Refresh(context.Background(), testClient, "old_refresh")
	require.NoError(t, err)
	assert.Equal(t, "rotated_refresh", tok.RefreshToken)
}

func TestRefreshRevoked(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeToken(w, http.StatusBadRequest, tokenResponse{
			Error:     "invalid_grant",
			ErrorDesc: "Refresh token revoked",
		})
	}))
	defer server.Close()

	ex := NewExchanger(server.URL, server.Client())
	_, err := ex.Refresh(context.Background(), testClient, "revoked")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrRefresh)
}

func TestRefreshWithoutToken(t *testing.T) {
	ex := NewExchanger("http://127.0.0.1:1", nil)
	_, err := ex.Refresh(context.Background(), testClient, "")
	assert.ErrorIs(t, err, apperrors.ErrRefresh)
}

func TestRequestTokenContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ex := NewExchanger("http://127.0.0.1:1", nil)
	_, err := ex.Exchange(ctx, testClient, "code", "http://localhost:6894")
	assert.ErrorIs(t, err, apperrors.ErrTokenExchange)
}
