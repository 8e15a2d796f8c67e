package client

import "strings"

// User represents a Spotify user profile.
type User struct {
	ID           string       `json:"id"`
	DisplayName  string       `json:"display_name"`
	Email        string       `json:"email"`
	Country      string       `json:"country"`
	Product      string       `json:"product"`
	URI          string       `json:"uri"`
	Followers    Followers    `json:"followers"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

// Followers represents follower information.
type Followers struct {
	Total int `json:"total"`
}

// ExternalURLs contains external URLs for a resource.
type ExternalURLs struct {
	Spotify string `json:"spotify"`
}

// CurrentlyPlaying is the response from the currently-playing endpoint.
type CurrentlyPlaying struct {
	Timestamp            int64    `json:"timestamp"`
	ProgressMS           int      `json:"progress_ms"`
	IsPlaying            bool     `json:"is_playing"`
	Item                 *Track   `json:"item"`
	CurrentlyPlayingType string   `json:"currently_playing_type"` // track, episode, ad, unknown
	Context              *Context `json:"context"`
}

// RemainingMS returns the time left in the current item.
func (cp *CurrentlyPlaying) RemainingMS() int {
	if cp.Item == nil {
		return 0
	}
	if r := cp.Item.DurationMS - cp.ProgressMS; r > 0 {
		return r
	}
	return 0
}

// Track represents a Spotify track.
type Track struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	URI          string       `json:"uri"`
	DurationMS   int          `json:"duration_ms"`
	Explicit     bool         `json:"explicit"`
	Popularity   int          `json:"popularity"`
	Artists      []Artist     `json:"artists"`
	Album        Album        `json:"album"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

// ArtistNames joins the track's artist names with ", ".
func (t *Track) ArtistNames() string {
	names := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}

// PrimaryArtist returns the first credited artist, or "".
func (t *Track) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0].Name
}

// Artist represents a Spotify artist.
type Artist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	URI          string       `json:"uri"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

// Album represents a Spotify album.
type Album struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	URI          string       `json:"uri"`
	AlbumType    string       `json:"album_type"`
	ReleaseDate  string       `json:"release_date"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

// Context represents a playback context (album, artist, playlist).
type Context struct {
	Type         string       `json:"type"`
	URI          string       `json:"uri"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

// SearchResponse represents the response from a search query.
type SearchResponse struct {
	Tracks    *SearchTracks    `json:"tracks"`
	Playlists *SearchPlaylists `json:"playlists"`
}

// SearchTracks contains track search results.
type SearchTracks struct {
	Items  []Track `json:"items"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// SearchPlaylists contains playlist search results. Items may contain nulls.
type SearchPlaylists struct {
	Items  []*Playlist `json:"items"`
	Total  int         `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// Playlist represents a Spotify playlist.
type Playlist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	URI          string       `json:"uri"`
	Description  string       `json:"description"`
	Owner        User         `json:"owner"`
	ExternalURLs ExternalURLs `json:"external_urls"`
	Tracks       struct {
		Total int `json:"total"`
	} `json:"tracks"`
}
