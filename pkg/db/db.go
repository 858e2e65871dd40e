// Package db provides the persistence layer used by the application. It wraps
// a SQLite database and acts as the token store: OAuth tokens survive a server
// restart so returning players do not have to log in again. Game state and
// round history are not persisted; they live only as long as the game.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/oauth2"
)

// DB wraps a sql.DB connection and exposes helper methods for the
// application's persistence layer.
type DB struct {
	*sql.DB
}

// New opens the SQLite database located at path. If the file does not exist
// it is created along with the required schema. The returned DB value wraps
// the sql.DB connection for use by the rest of the application.
func New(path string) (*DB, error) {
	d, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := d.Exec(`CREATE TABLE IF NOT EXISTS tokens (user_id TEXT PRIMARY KEY, token TEXT NOT NULL)`); err != nil {
		d.Close()
		return nil, fmt.Errorf("init db: %w", err)
	}
	return &DB{d}, nil
}

// SaveToken persists the OAuth token for the given userID. If a token already
// exists it is replaced.
func (db *DB) SaveToken(ctx context.Context, userID string, token *oauth2.Token) error {
	b, err := json.Marshal(token)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `INSERT INTO tokens(user_id, token) VALUES(?, ?) ON CONFLICT(user_id) DO UPDATE SET token=excluded.token`, userID, string(b))
	return err
}

// GetToken retrieves the OAuth token stored for userID and unmarshals it from
// JSON. The returned token includes the refresh token if one was originally
// saved. sql.ErrNoRows is returned when the user has never logged in.
func (db *DB) GetToken(ctx context.Context, userID string) (*oauth2.Token, error) {
	var data string
	if err := db.QueryRowContext(ctx, `SELECT token FROM tokens WHERE user_id=?`, userID).Scan(&data); err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal([]byte(data), &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}
