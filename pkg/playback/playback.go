// Package playback controls audio playback for the game. The concrete
// implementation drives the user's active Spotify Connect device through the
// Web API player endpoints; the game itself never touches audio data. The
// Engine interface keeps handlers testable and leaves room for other backends.
//
// As in the catalog wrapper, the underlying library has no context support so
// cancellation is checked explicitly before each call.

package playback

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify"
)

// Status reports the observable playback state.
type Status struct {
	// Playing is true while the device is audibly playing.
	Playing bool `json:"playing"`
	// Ready is true when an active device is available to receive
	// playback commands.
	Ready bool `json:"ready"`
}

// Engine starts and toggles playback of catalog tracks. Implementations must
// be safe for concurrent use.
type Engine interface {
	// PlayTrack starts playback of the track with the given catalog ID.
	// It returns once the engine has accepted the command; an error means
	// nothing is audible and the round must not advance.
	PlayTrack(ctx context.Context, trackID string) error

	// Toggle pauses a playing device or resumes a paused one. It returns
	// the playing state after the toggle.
	Toggle(ctx context.Context) (bool, error)

	// Status reports whether the device is currently playing and ready.
	Status(ctx context.Context) (Status, error)
}

// player is the subset of the spotify.Client player API used by Connect. The
// narrow interface allows a fake in tests.
type player interface {
	PlayOpt(opt *spotify.PlayOptions) error
	Play() error
	Pause() error
	PlayerState() (*spotify.PlayerState, error)
}

// Connect drives the user's active Spotify Connect device.
type Connect struct {
	client player
}

var _ Engine = (*Connect)(nil)

// NewConnect wraps an authenticated spotify.Client.
func NewConnect(client *spotify.Client) *Connect {
	return &Connect{client: client}
}

// PlayTrack implements Engine by replacing the device queue with the single
// track. Spotify rejects the call when no device is active; that error is
// passed on verbatim so the UI can tell the user to open their player.
func (c *Connect) PlayTrack(ctx context.Context, trackID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	uri := spotify.URI("spotify:track:" + trackID)
	if err := c.client.PlayOpt(&spotify.PlayOptions{URIs: []spotify.URI{uri}}); err != nil {
		return fmt.Errorf("start playback: %w", err)
	}
	return nil
}

// Toggle implements Engine. The current player state decides whether to pause
// or resume.
func (c *Connect) Toggle(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	state, err := c.client.PlayerState()
	if err != nil {
		return false, fmt.Errorf("player state: %w", err)
	}
	if state.Playing {
		if err := c.client.Pause(); err != nil {
			return true, fmt.Errorf("pause playback: %w", err)
		}
		return false, nil
	}
	if err := c.client.Play(); err != nil {
		return false, fmt.Errorf("resume playback: %w", err)
	}
	return true, nil
}

// Status implements Engine by reading the current player state.
func (c *Connect) Status(ctx context.Context) (Status, error) {
	if err := ctx.Err(); err != nil {
		return Status{}, err
	}
	state, err := c.client.PlayerState()
	if err != nil {
		return Status{}, fmt.Errorf("player state: %w", err)
	}
	return Status{Playing: state.Playing, Ready: state.Device.Active}, nil
}
