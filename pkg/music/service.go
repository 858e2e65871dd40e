// Package music defines the generic catalog interface and data structures the
// game consumes. Implementations wrap a concrete streaming provider; by
// depending on this package the handlers stay agnostic about the platform.
//
// Track is an alias of spotify.FullTrack so handlers and templates can operate
// on familiar fields (Name, Album, Artists etc). Other providers should
// populate these fields where possible.
package music

import (
	"context"
	"errors"

	libspotify "github.com/zmb3/spotify"
)

// Track represents a track returned by a catalog service.
type Track = libspotify.FullTrack

// Playlist is the subset of playlist metadata the picker UI needs.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ImageURL    string `json:"image_url"`
	TotalTracks int    `json:"total_tracks"`
}

// User identifies the authenticated catalog account.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// ErrEmptyPlaylist is returned by PlaylistTracks when the playlist exists but
// contains no tracks. Callers should treat it as a recoverable, user-visible
// condition.
var ErrEmptyPlaylist = errors.New("playlist has no tracks")

// Service exposes the catalog operations the game needs. The context is used
// for request cancellation and timeout propagation on every call.
type Service interface {
	// CurrentUser returns the identity of the authenticated user.
	CurrentUser(ctx context.Context) (User, error)

	// UserPlaylists lists the playlists of the authenticated user.
	UserPlaylists(ctx context.Context) ([]Playlist, error)

	// PlaylistTracks returns the tracks of the given playlist.
	// ErrEmptyPlaylist is returned when the playlist holds no tracks.
	PlaylistTracks(ctx context.Context, playlistID string) ([]Track, error)
}
