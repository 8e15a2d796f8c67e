package client

import (
	"context"
	"fmt"
	"strconv"
)

// PlayOptions configures a play request.
type PlayOptions struct {
	ContextURI string   `json:"context_uri,omitempty"`
	URIs       []string `json:"uris,omitempty"`
	PositionMS int      `json:"position_ms,omitempty"`
}

// Play starts or resumes playback on the active device.
// If opts is nil, resumes current playback.
func (c *Client) Play(ctx context.Context, opts *PlayOptions) error {
	// Spotify requires a JSON body even for resume
	body := opts
	if body == nil {
		body = &PlayOptions{}
	}
	return c.Put(ctx, "/me/player/play", body, nil)
}

// PlayTrack plays a single track by URI.
func (c *Client) PlayTrack(ctx context.Context, uri string) error {
	return c.Play(ctx, &PlayOptions{URIs: []string{uri}})
}

// PlayContext plays an album, artist or playlist by URI.
func (c *Client) PlayContext(ctx context.Context, uri string) error {
	return c.Play(ctx, &PlayOptions{ContextURI: uri})
}

// Pause pauses playback.
func (c *Client) Pause(ctx context.Context) error {
	return c.Put(ctx, "/me/player/pause", nil, nil)
}

// Next skips to the next track.
func (c *Client) Next(ctx context.Context) error {
	return c.Post(ctx, "/me/player/next", nil, nil)
}

// Previous skips to the previous track.
func (c *Client) Previous(ctx context.Context) error {
	return c.Post(ctx, "/me/player/previous", nil, nil)
}

// SetVolume sets the playback volume (0-100).
func (c *Client) SetVolume(ctx context.Context, percent int) error {
	if percent < 0 || percent > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", percent)
	}
	params := map[string]string{
		"volume_percent": strconv.Itoa(percent),
	}
	return c.Put(ctx, BuildURL("/me/player/volume", params), nil, nil)
}
