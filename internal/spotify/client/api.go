package client

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// GetCurrentUser returns the current user's profile.
func (c *Client) GetCurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.Get(ctx, "/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CurrentlyPlaying returns what the user is listening to, or nil when
// nothing is playing.
func (c *Client) CurrentlyPlaying(ctx context.Context) (*CurrentlyPlaying, error) {
	var cp CurrentlyPlaying
	if err := c.Get(ctx, "/me/player/currently-playing", &cp); err != nil {
		if errors.Is(err, errNoContent) {
			return nil, nil
		}
		return nil, err
	}
	if cp.Item == nil {
		return nil, nil
	}
	return &cp, nil
}

// SearchType represents a type of Spotify content to search.
type SearchType string

const (
	SearchTypeTrack    SearchType = "track"
	SearchTypePlaylist SearchType = "playlist"
)

// SearchOptions configures a search query.
type SearchOptions struct {
	Query  string
	Types  []SearchType
	Limit  int
	Offset int
	Market string
}

// Search performs a search query.
func (c *Client) Search(ctx context.Context, opts SearchOptions) (*SearchResponse, error) {
	if opts.Query == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}

	types := make([]string, len(opts.Types))
	for i, t := range opts.Types {
		types[i] = string(t)
	}
	if len(types) == 0 {
		types = []string{string(SearchTypeTrack)}
	}

	params := map[string]string{
		"q":    opts.Query,
		"type": strings.Join(types, ","),
	}

	if opts.Limit > 0 {
		params["limit"] = strconv.Itoa(opts.Limit)
	}
	if opts.Offset > 0 {
		params["offset"] = strconv.Itoa(opts.Offset)
	}
	if opts.Market != "" {
		params["market"] = opts.Market
	}

	var resp SearchResponse
	if err := c.Get(ctx, BuildURL("/search", params), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SearchTracks returns up to limit tracks matching query.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]Track, error) {
	resp, err := c.Search(ctx, SearchOptions{Query: query, Types: []SearchType{SearchTypeTrack}, Limit: limit})
	if err != nil {
		return nil, err
	}
	if resp.Tracks == nil {
		return nil, nil
	}
	return resp.Tracks.Items, nil
}

// SearchPlaylists returns up to limit playlists matching query. Spotify
// pads playlist results with nulls, which are dropped.
func (c *Client) SearchPlaylists(ctx context.Context, query string, limit int) ([]Playlist, error) {
	resp, err := c.Search(ctx, SearchOptions{Query: query, Types: []SearchType{SearchTypePlaylist}, Limit: limit})
	if err != nil {
		return nil, err
	}
	if resp.Playlists == nil {
		return nil, nil
	}
	playlists := make([]Playlist, 0, len(resp.Playlists.Items))
	for _, p := range resp.Playlists.Items {
		if p != nil {
			playlists = append(playlists, *p)
		}
	}
	return playlists, nil
}
