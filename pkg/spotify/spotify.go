// Package spotify wraps the official Spotify client library to implement the
// music.Service catalog interface. Clients are created per request from the
// user's OAuth token by the handlers package.
//
// All exported methods accept a context parameter allowing callers to cancel
// long running requests. The wrapped library does not provide context support
// so cancellation is checked explicitly before each call, including between
// pages of paginated listings.

package spotify

import (
	"context"

	"github.com/zmb3/spotify"

	"Guess-The-Track/pkg/music"
)

// pageLimit is the page size requested from the Spotify API, which is also
// the maximum the API allows per page.
const pageLimit = 50

// library defines the subset of the spotify.Client used by this package. It
// allows the concrete client to be replaced in tests.
type library interface {
	CurrentUser() (*spotify.PrivateUser, error)
	CurrentUsersPlaylistsOpt(opt *spotify.Options) (*spotify.SimplePlaylistPage, error)
	GetPlaylistTracksOpt(playlistID spotify.ID, opt *spotify.Options, fields string) (*spotify.PlaylistTrackPage, error)
}

// Client adapts the official Spotify client to music.Service.
type Client struct {
	client library
}

// Compile-time interface check ensuring Client satisfies the generic
// music.Service interface used by the rest of the application.
var _ music.Service = (*Client)(nil)

// New wraps an authenticated spotify.Client. The caller keeps ownership of the
// underlying client; one wrapper per request is cheap.
func New(client *spotify.Client) *Client {
	return &Client{client: client}
}

// CurrentUser implements music.Service by fetching the authenticated user's
// profile.
func (c *Client) CurrentUser(ctx context.Context) (music.User, error) {
	if err := ctx.Err(); err != nil {
		return music.User{}, err
	}
	u, err := c.client.CurrentUser()
	if err != nil {
		return music.User{}, err
	}
	return music.User{ID: u.ID, DisplayName: u.DisplayName}, nil
}

// UserPlaylists implements music.Service by listing the user's playlists,
// following the offset pagination until every page has been fetched.
func (c *Client) UserPlaylists(ctx context.Context) ([]music.Playlist, error) {
	var playlists []music.Playlist
	limit := pageLimit
	for offset := 0; ; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := c.client.CurrentUsersPlaylistsOpt(&spotify.Options{Limit: &limit, Offset: &offset})
		if err != nil {
			return nil, err
		}
		for _, p := range page.Playlists {
			pl := music.Playlist{
				ID:          string(p.ID),
				Name:        p.Name,
				TotalTracks: int(p.Tracks.Total),
			}
			if len(p.Images) > 0 {
				pl.ImageURL = p.Images[0].URL
			}
			playlists = append(playlists, pl)
		}
		offset += len(page.Playlists)
		if len(page.Playlists) == 0 || offset >= page.Total {
			return playlists, nil
		}
	}
}

// PlaylistTracks implements music.Service by returning all tracks of the
// playlist across every page. music.ErrEmptyPlaylist is returned when the
// playlist has none so callers can distinguish the empty case.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string) ([]music.Track, error) {
	var tracks []music.Track
	limit := pageLimit
	for offset := 0; ; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := c.client.GetPlaylistTracksOpt(spotify.ID(playlistID), &spotify.Options{Limit: &limit, Offset: &offset}, "")
		if err != nil {
			return nil, err
		}
		for _, pt := range page.Tracks {
			tracks = append(tracks, pt.Track)
		}
		offset += len(page.Tracks)
		if len(page.Tracks) == 0 || offset >= page.Total {
			break
		}
	}
	if len(tracks) == 0 {
		return nil, music.ErrEmptyPlaylist
	}
	return tracks, nil
}
