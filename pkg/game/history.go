// This file implements the append-only round history. The list lives for the
// lifetime of a game instance and is not persisted; a full application
// restart starts every player from a clean slate.

package game

import (
	"sync"
	"time"
)

// HistoryEntry summarises one completed round.
type HistoryEntry struct {
	RoundID    string    `json:"round_id"`
	TrackID    string    `json:"track_id"`
	TrackName  string    `json:"track_name"`
	ArtistName string    `json:"artist_name"`
	ImageURL   string    `json:"image_url"`
	Score      int       `json:"score"`
	Elapsed    float64   `json:"elapsed"`
	CreatedAt  time.Time `json:"created_at"`
}

// History is a session-scoped append-only list of completed rounds. Entries
// are kept in insertion order. It is safe for concurrent use.
type History struct {
	mu      sync.Mutex
	entries []HistoryEntry
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{}
}

// Record appends the entry to the history.
func (h *History) Record(e HistoryEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, e)
}

// Entries returns a copy of all recorded rounds in insertion order.
func (h *History) Entries() []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of recorded rounds.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
