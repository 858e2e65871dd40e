// This file serves the playlist picker, both as an HTML page and as JSON for
// the game frontend, plus the game page itself.

package handlers

import (
	"html/template"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// Playlists renders an HTML page listing the user's playlists with links into
// the game. Catalog failures are reduced to a generic retry message.
func (app *Application) Playlists(w http.ResponseWriter, r *http.Request) {
	client, _, ok := app.clientForRequest(w, r)
	if !ok {
		return
	}
	playlists, err := app.NewCatalog(client).UserPlaylists(r.Context())
	if err != nil {
		log.WithError(err).Error("load playlists")
		http.Error(w, "an error occurred while loading your playlists, please try again", http.StatusBadGateway)
		return
	}
	tmpl, err := template.ParseFiles("ui/templates/playlists.html")
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	if err := tmpl.Execute(w, playlists); err != nil {
		log.WithError(err).Error("render playlists")
	}
}

// PlaylistsJSON returns the user's playlists for consumption by the frontend.
func (app *Application) PlaylistsJSON(w http.ResponseWriter, r *http.Request) {
	client, _, ok := app.clientForRequest(w, r)
	if !ok {
		return
	}
	playlists, err := app.NewCatalog(client).UserPlaylists(r.Context())
	if err != nil {
		log.WithError(err).Error("load playlists")
		respondJSONError(w, http.StatusBadGateway, "could not load playlists, please try again")
		return
	}
	respondJSON(w, http.StatusOK, playlists)
}

// GamePage renders the page hosting the game UI for the playlist given in the
// query string.
func (app *Application) GamePage(w http.ResponseWriter, r *http.Request) {
	if _, ok := app.requireUser(w, r); !ok {
		return
	}
	tmpl, err := template.ParseFiles("ui/templates/game.html")
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	data := struct{ PlaylistID string }{r.URL.Query().Get("playlist")}
	if err := tmpl.Execute(w, data); err != nil {
		log.WithError(err).Error("render game page")
	}
}
