// Package handlers contains the HTTP handlers that respond to web requests:
// the OAuth login flow, the playlist picker and the JSON API driving the
// guessing game. The Application struct bundles the dependencies so tests can
// swap in fakes for the catalog, the playback engine and the authenticator.

package handlers

import (
	"fmt"
	"net/http"

	libspotify "github.com/zmb3/spotify"
	"golang.org/x/oauth2"

	"Guess-The-Track/pkg/db"
	"Guess-The-Track/pkg/game"
	"Guess-The-Track/pkg/music"
	"Guess-The-Track/pkg/playback"
)

// Authenticator abstracts the Spotify OAuth helper so tests can substitute a
// stub. spotify.Authenticator satisfies it directly.
type Authenticator interface {
	AuthURL(state string) string
	Token(state string, r *http.Request) (*oauth2.Token, error)
	NewClient(token *oauth2.Token) libspotify.Client
}

// Application holds the dependencies shared by all handlers.
type Application struct {
	Authenticator Authenticator
	DB            *db.DB
	SignKey       []byte
	Games         *game.Manager

	// NewCatalog and NewPlayback build the per-request service wrappers
	// from the user's authenticated client. They exist so tests can
	// inject fakes without an OAuth token.
	NewCatalog  func(client libspotify.Client) music.Service
	NewPlayback func(client libspotify.Client) playback.Engine
}

// Home renders the landing page with a login link and, for returning users, a
// shortcut to the playlist picker.
func (app *Application) Home(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, `
		<h1>Guess The Track</h1>
		<p>Log in with Spotify, pick a playlist and guess the songs as fast as you can.</p>
		<p><a href="/login">Log in with Spotify</a></p>
		<p><a href="/playlists">My playlists</a></p>
	`)
}

// clientForRequest authenticates the request and returns a Spotify client
// bound to the user's token. When the token cookie is missing the token store
// is consulted so a returning user with a fresh browser session does not have
// to log in again. On failure a response has already been written and ok is
// false.
func (app *Application) clientForRequest(w http.ResponseWriter, r *http.Request) (libspotify.Client, string, bool) {
	userID, ok := app.requireUser(w, r)
	if !ok {
		return libspotify.Client{}, "", false
	}
	tok, err := app.tokenFromRequest(r)
	if err != nil && app.DB != nil {
		tok, err = app.DB.GetToken(r.Context(), userID)
	}
	if err != nil || tok == nil {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return libspotify.Client{}, "", false
	}
	tok, err = app.refreshIfExpired(w, r, userID, tok)
	if err != nil || !tok.Valid() {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return libspotify.Client{}, "", false
	}
	return app.Authenticator.NewClient(tok), userID, true
}
