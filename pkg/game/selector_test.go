package game

import (
	"errors"
	"testing"
)

// TestSelectorNoRepeats draws every track from a list and checks each ID is
// returned exactly once before exhaustion.
func TestSelectorNoRepeats(t *testing.T) {
	tracks := []Track{
		{ID: "1", Name: "A"},
		{ID: "2", Name: "B"},
		{ID: "3", Name: "C"},
	}
	s := NewSelector()
	seen := make(map[string]int)
	for range tracks {
		tr, err := s.Pick(tracks)
		if err != nil {
			t.Fatal(err)
		}
		seen[tr.ID]++
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("track %s picked %d times", id, n)
		}
	}
	if len(seen) != 3 {
		t.Errorf("expected 3 distinct tracks, got %d", len(seen))
	}
}

// TestSelectorExhausted verifies the no-more-tracks condition once everything
// has been played.
func TestSelectorExhausted(t *testing.T) {
	tracks := []Track{{ID: "1", Name: "A"}}
	s := NewSelector()
	if _, err := s.Pick(tracks); err != nil {
		t.Fatal(err)
	}
	_, err := s.Pick(tracks)
	if !errors.Is(err, ErrNoTracksLeft) {
		t.Fatalf("expected ErrNoTracksLeft, got %v", err)
	}
	if s.Remaining(tracks) != 0 {
		t.Errorf("remaining should be 0, got %d", s.Remaining(tracks))
	}
}

// TestSelectorSkipsInvalid checks tracks without an ID or name are never
// selected.
func TestSelectorSkipsInvalid(t *testing.T) {
	tracks := []Track{
		{ID: "", Name: "Local File"},
		{ID: "x", Name: ""},
		{ID: "ok", Name: "Valid"},
	}
	s := NewSelector()
	tr, err := s.Pick(tracks)
	if err != nil {
		t.Fatal(err)
	}
	if tr.ID != "ok" {
		t.Errorf("picked invalid track %+v", tr)
	}
	if _, err := s.Pick(tracks); !errors.Is(err, ErrNoTracksLeft) {
		t.Errorf("invalid tracks counted as playable: %v", err)
	}
}

// TestSelectorEmptyList verifies an empty playlist signals exhaustion
// immediately.
func TestSelectorEmptyList(t *testing.T) {
	s := NewSelector()
	if _, err := s.Pick(nil); !errors.Is(err, ErrNoTracksLeft) {
		t.Fatalf("expected ErrNoTracksLeft for empty list, got %v", err)
	}
}
