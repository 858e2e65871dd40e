// This file owns the per-user game instances. A Game bundles the playlist's
// tracks, the selector, the history and the session of the active round; the
// Manager maps authenticated users to their game so HTTP handlers stay
// stateless.

package game

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Game holds everything belonging to one play-through of a playlist.
type Game struct {
	ID         string
	PlaylistID string

	mu       sync.Mutex
	tracks   []Track
	selector *Selector
	history  *History
	session  *Session
}

// Session returns the session of the current round.
func (g *Game) Session() *Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session
}

// History returns the game's round history.
func (g *Game) History() *History {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.history
}

// Remaining reports how many unplayed tracks are left in the playlist.
func (g *Game) Remaining() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.selector.Remaining(g.tracks)
}

// NextRound picks a fresh track and resets the session for it. It returns
// ErrNoTracksLeft when the playlist is exhausted; the session then stays in
// Scored so the history remains inspectable. The state check happens before
// the pick so a request arriving mid-round cannot burn an unplayed track.
func (g *Game) NextRound() (Track, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if st := g.session.State(); st != StateScored {
		return Track{}, fmt.Errorf("cannot start a new round in state %s", st)
	}
	track, err := g.selector.Pick(g.tracks)
	if err != nil {
		return Track{}, err
	}
	if err := g.session.Reset(track); err != nil {
		return Track{}, err
	}
	return track, nil
}

// Manager tracks the active game of each user. It is safe for concurrent use.
type Manager struct {
	mu         sync.Mutex
	scoring    Scoring
	onComplete func(GuessResult)
	games      map[string]*Game
}

// NewManager returns a manager that scores rounds with the given constants.
// onComplete, if non-nil, is called once for every scored round of every game;
// it is used to feed metrics.
func NewManager(scoring Scoring, onComplete func(GuessResult)) *Manager {
	return &Manager{
		scoring:    scoring,
		onComplete: onComplete,
		games:      make(map[string]*Game),
	}
}

// Start creates a new game for the user over the given playlist tracks and
// picks the first track. Any previous game of the user is torn down first so
// its timer cannot leak into the new one. ErrNoTracksLeft is returned when the
// playlist contains no valid tracks.
func (m *Manager) Start(userID, playlistID string, tracks []Track) (*Game, Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.games[userID]; ok {
		old.Session().Close()
		delete(m.games, userID)
	}
	g := &Game{
		ID:         uuid.NewString(),
		PlaylistID: playlistID,
		tracks:     tracks,
		selector:   NewSelector(),
		history:    NewHistory(),
	}
	track, err := g.selector.Pick(tracks)
	if err != nil {
		return nil, Track{}, err
	}
	g.session = NewSession(track, m.scoring, g.history, m.onComplete)
	m.games[userID] = g
	return g, track, nil
}

// Get returns the user's active game, if any.
func (m *Manager) Get(userID string) (*Game, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[userID]
	return g, ok
}

// End tears down the user's active game, cancelling its timer.
func (m *Manager) End(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.games[userID]; ok {
		g.Session().Close()
		delete(m.games, userID)
	}
}
