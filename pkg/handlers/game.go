// This file implements the JSON API that drives one round of the guessing
// game: starting a game over a playlist, pausing into the guessing phase,
// submitting a guess and requesting the next track. The round metadata is
// never included in responses before the round is scored, otherwise the
// browser could simply read the answer off the wire.

package handlers

import (
	"errors"
	"net/http"

	libspotify "github.com/zmb3/spotify"
	log "github.com/sirupsen/logrus"

	"Guess-The-Track/pkg/game"
	"Guess-The-Track/pkg/music"
)

// gameTracks converts catalog tracks into the compact representation the game
// core operates on.
func gameTracks(tracks []music.Track) []game.Track {
	out := make([]game.Track, len(tracks))
	for i, t := range tracks {
		gt := game.Track{ID: string(t.ID), Name: t.Name}
		for _, a := range t.Artists {
			gt.Artists = append(gt.Artists, a.Name)
		}
		if len(t.Album.Images) > 0 {
			gt.ImageURL = t.Album.Images[0].URL
		}
		out[i] = gt
	}
	return out
}

// noTracksResponse is returned when a playlist has no (more) playable tracks.
// It is a recoverable condition: the client offers to pick another playlist.
func noTracksResponse() map[string]string {
	return map[string]string{"status": "no_tracks"}
}

// StartGame creates a new game over the requested playlist, picks the first
// track and starts playback on the user's active device.
func (app *Application) StartGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	client, userID, ok := app.clientForRequest(w, r)
	if !ok {
		return
	}
	var req struct {
		PlaylistID string `json:"playlist_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.PlaylistID == "" {
		respondJSONError(w, http.StatusBadRequest, "playlist_id is required")
		return
	}
	tracks, err := app.NewCatalog(client).PlaylistTracks(r.Context(), req.PlaylistID)
	if err != nil {
		if errors.Is(err, music.ErrEmptyPlaylist) {
			respondJSON(w, http.StatusOK, noTracksResponse())
			return
		}
		log.WithError(err).WithField("playlist", req.PlaylistID).Error("load playlist tracks")
		respondJSONError(w, http.StatusBadGateway, "could not load the playlist, please try again")
		return
	}
	g, track, err := app.Games.Start(userID, req.PlaylistID, gameTracks(tracks))
	if err != nil {
		if errors.Is(err, game.ErrNoTracksLeft) {
			respondJSON(w, http.StatusOK, noTracksResponse())
			return
		}
		respondJSONError(w, http.StatusInternalServerError, "could not start the game")
		return
	}
	app.startRound(w, r, client, g, track)
}

// startRound starts playback for the picked track and, only once the engine
// confirms it, lets the session timer run. Playback errors are surfaced
// verbatim and leave the round in AwaitingPlayback.
func (app *Application) startRound(w http.ResponseWriter, r *http.Request, client libspotify.Client, g *game.Game, track game.Track) {
	sess := g.Session()
	if err := app.NewPlayback(client).PlayTrack(r.Context(), track.ID); err != nil {
		sess.PlaybackFailed(err)
		log.WithError(err).WithField("track", track.ID).Warn("start playback")
		respondJSONError(w, http.StatusBadGateway, err.Error())
		return
	}
	if err := sess.PlaybackStarted(); err != nil {
		respondJSONError(w, http.StatusConflict, err.Error())
		return
	}
	roundsStarted.Inc()
	respondJSON(w, http.StatusOK, map[string]any{
		"game_id":   g.ID,
		"state":     sess.State().String(),
		"remaining": g.Remaining(),
	})
}

// PauseRound freezes the round timer and moves into the guessing phase, then
// asks the playback engine to pause. The transition is not rolled back when
// the engine call fails; the timer is already frozen and continuing audio
// only helps the player.
func (app *Application) PauseRound(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	client, userID, ok := app.clientForRequest(w, r)
	if !ok {
		return
	}
	g, ok := app.Games.Get(userID)
	if !ok {
		respondJSONError(w, http.StatusNotFound, "no active game")
		return
	}
	sess := g.Session()
	if err := sess.PauseAndGuess(); err != nil {
		respondJSONError(w, http.StatusConflict, err.Error())
		return
	}
	if _, err := app.NewPlayback(client).Toggle(r.Context()); err != nil {
		log.WithError(err).Warn("pause playback")
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"state":   sess.State().String(),
		"elapsed": sess.Elapsed(),
	})
}

// SubmitGuess scores the typed guess and reveals the track.
func (app *Application) SubmitGuess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := app.requireUser(w, r)
	if !ok {
		return
	}
	g, ok := app.Games.Get(userID)
	if !ok {
		respondJSONError(w, http.StatusNotFound, "no active game")
		return
	}
	var req struct {
		Title  string `json:"title"`
		Artist string `json:"artist"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess := g.Session()
	res, err := sess.SubmitGuess(req.Title, req.Artist)
	if err != nil {
		respondJSONError(w, http.StatusConflict, err.Error())
		return
	}
	track := sess.Track()
	respondJSON(w, http.StatusOK, map[string]any{
		"score":   res.Score,
		"correct": res.Correct,
		"elapsed": sess.Elapsed(),
		"track": map[string]string{
			"id":        track.ID,
			"name":      track.Name,
			"artist":    track.ArtistLine(),
			"image_url": track.ImageURL,
		},
	})
}

// NextRound picks another unplayed track and starts playback for it. The
// exhausted playlist is reported as a recoverable no_tracks status.
func (app *Application) NextRound(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	client, userID, ok := app.clientForRequest(w, r)
	if !ok {
		return
	}
	g, ok := app.Games.Get(userID)
	if !ok {
		respondJSONError(w, http.StatusNotFound, "no active game")
		return
	}
	track, err := g.NextRound()
	if err != nil {
		if errors.Is(err, game.ErrNoTracksLeft) {
			respondJSON(w, http.StatusOK, noTracksResponse())
			return
		}
		respondJSONError(w, http.StatusConflict, err.Error())
		return
	}
	app.startRound(w, r, client, g, track)
}

// GameStateJSON reports the current round state for UI polling. The track is
// omitted on purpose until the round is scored.
func (app *Application) GameStateJSON(w http.ResponseWriter, r *http.Request) {
	userID, ok := app.requireUser(w, r)
	if !ok {
		return
	}
	g, ok := app.Games.Get(userID)
	if !ok {
		respondJSONError(w, http.StatusNotFound, "no active game")
		return
	}
	sess := g.Session()
	resp := map[string]any{
		"game_id":   g.ID,
		"state":     sess.State().String(),
		"elapsed":   sess.Elapsed(),
		"remaining": g.Remaining(),
	}
	if err := sess.PlaybackErr(); err != nil {
		resp["playback_error"] = err.Error()
	}
	if res, scored := sess.Result(); scored {
		resp["score"] = res.Score
		resp["correct"] = res.Correct
	}
	respondJSON(w, http.StatusOK, resp)
}

// HistoryJSON returns the completed rounds of the active game in insertion
// order.
func (app *Application) HistoryJSON(w http.ResponseWriter, r *http.Request) {
	userID, ok := app.requireUser(w, r)
	if !ok {
		return
	}
	g, ok := app.Games.Get(userID)
	if !ok {
		respondJSON(w, http.StatusOK, []game.HistoryEntry{})
		return
	}
	respondJSON(w, http.StatusOK, g.History().Entries())
}
