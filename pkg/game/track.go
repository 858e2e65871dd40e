// Package game implements the guessing-game core: string similarity scoring,
// the per-round session state machine, the session-scoped history and the
// random track selector. The package has no knowledge of Spotify or HTTP; the
// orchestrating handlers convert catalog tracks into the small Track type
// defined here before handing them over.

package game

import "strings"

// Track is the immutable view of a catalog track the game operates on. It is
// created once per fetch and never modified afterwards.
type Track struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Artists  []string `json:"artists"`
	ImageURL string   `json:"image_url"`
}

// Valid reports whether the track carries enough metadata to be playable and
// guessable. Tracks without an ID (local files) or without a name are skipped
// by the selector.
func (t Track) Valid() bool {
	return t.ID != "" && t.Name != ""
}

// PrimaryArtist returns the first listed artist. Guesses are scored against
// this value so users are not penalised for omitting featured artists.
func (t Track) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0]
}

// ArtistLine joins all artist names for display purposes.
func (t Track) ArtistLine() string {
	return strings.Join(t.Artists, ", ")
}
