// Package lyrics looks up song lyrics from a lyrics.ovh compatible API.
package lyrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	apperrors "github.com/tessro/spotify-cli/internal/errors"
)

// BaseURL is the public lyrics.ovh API.
const BaseURL = "https://api.lyrics.ovh"

// Client fetches lyrics. It needs no credentials.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// New creates a lyrics client for baseURL (BaseURL when empty).
func New(baseURL string, httpClient *http.Client, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

type response struct {
	Lyrics string `json:"lyrics"`
	Error  string `json:"error"`
}

// Find returns the lyrics for title by artist. Unknown songs return an
// error wrapping ErrNotFound.
func (c *Client) Find(ctx context.Context, artist, title string) (string, error) {
	if artist == "" || title == "" {
		return "", fmt.Errorf("%w: artist and title are required", apperrors.ErrNotFound)
	}

	fullURL := c.baseURL + "/v1/" + url.PathEscape(artist) + "/" + url.PathEscape(title)
	c.logger.Debug("lyrics request", "url", fullURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", apperrors.ErrTimeout, err)
		}
		return "", fmt.Errorf("lyrics request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("lyrics response", "status", resp.StatusCode)

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: no lyrics for %s - %s", apperrors.ErrNotFound, artist, title)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("lyrics API error: status %d", resp.StatusCode)
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to parse lyrics response: %w", err)
	}

	text := strings.TrimSpace(strings.ReplaceAll(body.Lyrics, "\r\n", "\n"))
	if text == "" {
		return "", fmt.Errorf("%w: no lyrics for %s - %s", apperrors.ErrNotFound, artist, title)
	}
	return text, nil
}
