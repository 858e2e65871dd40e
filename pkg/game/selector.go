// This file picks the next track to play. The selector remembers which track
// IDs were already used so a game never repeats a song until the playlist is
// exhausted.

package game

import (
	"errors"
	"math/rand"
	"time"

	"github.com/samber/lo"
)

// ErrNoTracksLeft is returned by Pick when every valid track of the playlist
// has already been played. Callers should treat it as a recoverable
// "game over" condition rather than a failure.
var ErrNoTracksLeft = errors.New("no unplayed tracks left")

// Selector chooses unplayed tracks uniformly at random. It is not safe for
// concurrent use; the owning Game serialises access.
type Selector struct {
	played map[string]struct{}
	rand   *rand.Rand
}

// NewSelector returns a selector with an empty played set.
func NewSelector() *Selector {
	return &Selector{
		played: make(map[string]struct{}),
		rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Pick filters tracks to valid, unplayed entries and selects one uniformly at
// random, marking it as played. ErrNoTracksLeft is returned when no candidate
// remains; nothing is marked in that case.
func (s *Selector) Pick(tracks []Track) (Track, error) {
	candidates := lo.Filter(tracks, func(t Track, _ int) bool {
		if !t.Valid() {
			return false
		}
		_, done := s.played[t.ID]
		return !done
	})
	if len(candidates) == 0 {
		return Track{}, ErrNoTracksLeft
	}
	pick := candidates[s.rand.Intn(len(candidates))]
	s.played[pick.ID] = struct{}{}
	return pick, nil
}

// Remaining reports how many valid tracks of the list are still unplayed.
func (s *Selector) Remaining(tracks []Track) int {
	return lo.CountBy(tracks, func(t Track) bool {
		if !t.Valid() {
			return false
		}
		_, done := s.played[t.ID]
		return !done
	})
}
