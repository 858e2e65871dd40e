// Package config loads application configuration from an optional TOML file
// with environment variable overrides. Environment variables win so container
// deployments can keep secrets out of the file.

package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"Guess-The-Track/pkg/game"
)

// Config is the top level application configuration.
type Config struct {
	Spotify  SpotifyConfig  `toml:"spotify"`
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Game     GameConfig     `toml:"game"`
}

// SpotifyConfig contains the Spotify application credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURL  string `toml:"redirect_url"`
}

// ServerConfig contains HTTP server settings. SigningKey is used to HMAC-sign
// the session cookies.
type ServerConfig struct {
	Addr       string `toml:"addr"`
	SigningKey string `toml:"signing_key"`
}

// DatabaseConfig contains the SQLite token store location.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// GameConfig exposes the scoring constants so the tuning can be adjusted
// without a rebuild.
type GameConfig struct {
	CorrectThreshold   float64 `toml:"correct_threshold"`
	SimilarityWeight   float64 `toml:"similarity_weight"`
	TimeBonusWeight    float64 `toml:"time_bonus_weight"`
	BonusWindowSeconds float64 `toml:"bonus_window_seconds"`
}

// Default returns the configuration used when no file or environment is
// present.
func Default() *Config {
	return &Config{
		Spotify: SpotifyConfig{
			RedirectURL: "http://localhost:4000/callback",
		},
		Server: ServerConfig{
			Addr: ":4000",
		},
		Database: DatabaseConfig{
			Path: "guessthetrack.db",
		},
		Game: GameConfig{
			CorrectThreshold:   game.DefaultScoring.CorrectThreshold,
			SimilarityWeight:   game.DefaultScoring.SimilarityWeight,
			TimeBonusWeight:    game.DefaultScoring.TimeBonusWeight,
			BonusWindowSeconds: game.DefaultScoring.BonusWindow,
		},
	}
}

// Load builds the configuration from defaults, the TOML file at path (if it
// exists) and finally the environment. A missing file is not an error; a
// malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// Fall through to env-only configuration.
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides file values with the environment variables the previous
// deployments already use.
func (c *Config) applyEnv() {
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Spotify.ClientSecret = v
	}
	if v := os.Getenv("SPOTIFY_REDIRECT_URL"); v != "" {
		c.Spotify.RedirectURL = v
	}
	if v := os.Getenv("SIGNING_KEY"); v != "" {
		c.Server.SigningKey = v
	}
	if v := os.Getenv("ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		c.Database.Path = v
	}
}

// Validate reports missing required settings.
func (c *Config) Validate() error {
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		return fmt.Errorf("spotify client_id and client_secret must be set")
	}
	if c.Server.SigningKey == "" {
		return fmt.Errorf("server signing_key must be set")
	}
	return nil
}

// Scoring converts the game section into the scoring constants used by the
// game package.
func (c *Config) Scoring() game.Scoring {
	return game.Scoring{
		CorrectThreshold: c.Game.CorrectThreshold,
		SimilarityWeight: c.Game.SimilarityWeight,
		TimeBonusWeight:  c.Game.TimeBonusWeight,
		BonusWindow:      c.Game.BonusWindowSeconds,
	}
}
