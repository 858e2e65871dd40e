// Command web starts the Guess-The-Track server. Configuration comes from an
// optional TOML file plus environment variables for the Spotify credentials
// and signing key. The server serves the HTML pages, the JSON game API and a
// Prometheus metrics endpoint.

package main

import (
	"flag"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	libspotify "github.com/zmb3/spotify"

	"Guess-The-Track/pkg/config"
	"Guess-The-Track/pkg/db"
	"Guess-The-Track/pkg/game"
	"Guess-The-Track/pkg/handlers"
	"Guess-The-Track/pkg/music"
	"Guess-The-Track/pkg/playback"
	"Guess-The-Track/pkg/spotify"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("load configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	// The scopes cover everything the game needs: reading the user's
	// playlists and profile, plus controlling playback on their devices.
	auth := libspotify.NewAuthenticator(cfg.Spotify.RedirectURL,
		libspotify.ScopePlaylistReadPrivate,
		libspotify.ScopeUserReadPrivate,
		libspotify.ScopeUserReadPlaybackState,
		libspotify.ScopeUserModifyPlaybackState,
	)
	auth.SetAuthInfo(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret)

	database, err := db.New(cfg.Database.Path)
	if err != nil {
		log.WithError(err).Fatal("open token store")
	}
	defer database.Close()

	app := &handlers.Application{
		Authenticator: auth,
		DB:            database,
		SignKey:       []byte(cfg.Server.SigningKey),
		Games:         game.NewManager(cfg.Scoring(), handlers.ObserveResult),
		NewCatalog: func(c libspotify.Client) music.Service {
			return spotify.New(&c)
		},
		NewPlayback: func(c libspotify.Client) playback.Engine {
			return playback.NewConnect(&c)
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", app.Home)
	mux.HandleFunc("/login", app.Login)
	mux.HandleFunc("/callback", app.OAuthCallback)
	mux.HandleFunc("/logout", app.Logout)
	mux.HandleFunc("/playlists", app.Playlists)
	mux.HandleFunc("/api/playlists", app.PlaylistsJSON)
	mux.HandleFunc("/game", app.GamePage)
	mux.HandleFunc("/api/game", app.GameStateJSON)
	mux.HandleFunc("/api/game/start", app.StartGame)
	mux.HandleFunc("/api/game/pause", app.PauseRound)
	mux.HandleFunc("/api/game/guess", app.SubmitGuess)
	mux.HandleFunc("/api/game/next", app.NextRound)
	mux.HandleFunc("/api/game/history", app.HistoryJSON)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir("./ui/static"))))

	log.WithField("addr", cfg.Server.Addr).Info("starting server")
	if err := http.ListenAndServe(cfg.Server.Addr, handlers.SecurityHeaders(mux)); err != nil {
		log.WithError(err).Fatal("http server")
	}
}
