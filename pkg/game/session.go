// This file implements the per-round state machine. A round moves strictly
// forward through AwaitingPlayback, Playing, Guessing and Scored; the only way
// back is Reset, which bumps the generation counter and starts a fresh round.
// The elapsed timer is a ticker goroutine that accumulates time only while the
// state is Playing. Ticks carry the generation they were started for, so a
// tick that fires after a reset or teardown is silently dropped instead of
// leaking into the next round.

package game

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State identifies the phase a round is in.
type State int

const (
	StateAwaitingPlayback State = iota
	StatePlaying
	StateGuessing
	StateScored
)

// String returns the lower-case name used in logs and JSON responses.
func (s State) String() string {
	switch s {
	case StateAwaitingPlayback:
		return "awaiting_playback"
	case StatePlaying:
		return "playing"
	case StateGuessing:
		return "guessing"
	case StateScored:
		return "scored"
	}
	return "unknown"
}

// tickInterval is the timer resolution. Scores only use whole-second
// granularity through the bonus window so 100ms is plenty.
const tickInterval = 100 * time.Millisecond

// Session tracks the timer, guesses and result of one round and enforces the
// legal transitions between phases. All methods are safe for concurrent use.
type Session struct {
	mu         sync.Mutex
	scoring    Scoring
	history    *History
	onComplete func(GuessResult)

	state       State
	track       Track
	gen         uint64
	elapsed     float64
	stopTick    chan struct{}
	titleGuess  string
	artistGuess string
	result      *GuessResult
	playbackErr error
}

// NewSession creates a session in AwaitingPlayback for the given track.
// history receives a summary entry when the round is scored; onComplete, if
// non-nil, is invoked once per scored round after the history entry has been
// recorded.
func NewSession(track Track, scoring Scoring, history *History, onComplete func(GuessResult)) *Session {
	return &Session{
		scoring:    scoring,
		history:    history,
		onComplete: onComplete,
		state:      StateAwaitingPlayback,
		track:      track,
	}
}

// PlaybackStarted moves the round from AwaitingPlayback to Playing and starts
// the elapsed timer. It must only be called after the playback engine has
// confirmed that the track is audible.
func (s *Session) PlaybackStarted() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAwaitingPlayback {
		return fmt.Errorf("cannot start playback in state %s", s.state)
	}
	s.playbackErr = nil
	s.state = StatePlaying
	s.startTimerLocked()
	return nil
}

// PlaybackFailed records a playback engine error. The round stays in
// AwaitingPlayback so the caller can surface the error and retry. Errors
// reported in any other state are stale callbacks from a superseded attempt
// and are dropped.
func (s *Session) PlaybackFailed(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAwaitingPlayback {
		return
	}
	s.playbackErr = err
}

// PauseAndGuess freezes the timer and moves the round into Guessing. Calling
// it while already Guessing is a no-op so double clicks are harmless. Any
// other state is a transition error.
func (s *Session) PauseAndGuess() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StatePlaying:
		s.stopTimerLocked()
		s.state = StateGuessing
		return nil
	case StateGuessing:
		return nil
	default:
		return fmt.Errorf("cannot pause in state %s", s.state)
	}
}

// SubmitGuess scores the guesses against the round's track, records the
// history entry and fires the completion callback. It can only be called in
// Guessing which guarantees a single result per round.
func (s *Session) SubmitGuess(titleGuess, artistGuess string) (GuessResult, error) {
	s.mu.Lock()
	if s.state != StateGuessing {
		s.mu.Unlock()
		return GuessResult{}, fmt.Errorf("cannot submit a guess in state %s", s.state)
	}
	s.titleGuess, s.artistGuess = titleGuess, artistGuess
	res := s.scoring.Score(titleGuess, artistGuess, s.track.Name, s.track.PrimaryArtist(), s.elapsed)
	s.result = &res
	s.state = StateScored
	if s.history != nil {
		s.history.Record(HistoryEntry{
			RoundID:    uuid.NewString(),
			TrackID:    s.track.ID,
			TrackName:  s.track.Name,
			ArtistName: s.track.PrimaryArtist(),
			ImageURL:   s.track.ImageURL,
			Score:      res.Score,
			Elapsed:    s.elapsed,
			CreatedAt:  time.Now(),
		})
	}
	cb := s.onComplete
	s.mu.Unlock()

	// Invoked outside the lock so the callback may call back into the
	// session without deadlocking.
	if cb != nil {
		cb(res)
	}
	return res, nil
}

// Reset starts a new round for the given track. It is only legal once the
// current round has been scored. The generation counter is bumped so any
// straggling tick from the previous round is discarded.
func (s *Session) Reset(track Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateScored {
		return fmt.Errorf("cannot start a new round in state %s", s.state)
	}
	s.stopTimerLocked()
	s.gen++
	s.state = StateAwaitingPlayback
	s.track = track
	s.elapsed = 0
	s.titleGuess, s.artistGuess = "", ""
	s.result = nil
	s.playbackErr = nil
	return nil
}

// Close tears the session down, stopping the timer regardless of state. After
// Close no tick will ever update the elapsed time again.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
	s.gen++
}

// startTimerLocked launches the ticker goroutine for the current generation.
// Callers must hold s.mu.
func (s *Session) startTimerLocked() {
	s.stopTimerLocked()
	stop := make(chan struct{})
	s.stopTick = stop
	go s.runTimer(s.gen, stop)
}

// stopTimerLocked cancels any pending ticker. Callers must hold s.mu.
func (s *Session) stopTimerLocked() {
	if s.stopTick != nil {
		close(s.stopTick)
		s.stopTick = nil
	}
}

// runTimer accumulates elapsed time in fixed ticks while the session remains
// in Playing for the generation the timer was started with.
func (s *Session) runTimer(gen uint64, stop chan struct{}) {
	t := time.NewTicker(tickInterval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			s.mu.Lock()
			if s.gen == gen && s.state == StatePlaying {
				s.elapsed += tickInterval.Seconds()
			}
			s.mu.Unlock()
		}
	}
}

// State returns the current phase of the round.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Elapsed returns the seconds of playback accumulated so far.
func (s *Session) Elapsed() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

// Track returns the track of the current round.
func (s *Session) Track() Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.track
}

// Result returns the round's result and whether it has been scored yet.
func (s *Session) Result() (GuessResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return GuessResult{}, false
	}
	return *s.result, true
}

// PlaybackErr returns the last playback engine error, or nil.
func (s *Session) PlaybackErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playbackErr
}
