package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	libspotify "github.com/zmb3/spotify"
	"golang.org/x/oauth2"

	"Guess-The-Track/pkg/game"
	"Guess-The-Track/pkg/music"
	"Guess-The-Track/pkg/playback"
)

var testKey = []byte("test-signing-key")

// fakeAuth satisfies Authenticator without talking to Spotify. The returned
// client is never used because tests also inject fake catalog and playback
// factories.
type fakeAuth struct{}

func (fakeAuth) AuthURL(state string) string {
	return "https://accounts.spotify.com/authorize?state=" + state
}

func (fakeAuth) Token(state string, r *http.Request) (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: "tok"}, nil
}

func (fakeAuth) NewClient(t *oauth2.Token) libspotify.Client {
	return libspotify.Client{}
}

type fakeCatalog struct {
	playlists []music.Playlist
	tracks    []music.Track
	err       error
}

func (f *fakeCatalog) CurrentUser(context.Context) (music.User, error) {
	return music.User{ID: "u"}, f.err
}

func (f *fakeCatalog) UserPlaylists(context.Context) ([]music.Playlist, error) {
	return f.playlists, f.err
}

func (f *fakeCatalog) PlaylistTracks(context.Context, string) ([]music.Track, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tracks, nil
}

type fakeEngine struct {
	played  []string
	toggles int
	playErr error
}

func (f *fakeEngine) PlayTrack(ctx context.Context, trackID string) error {
	if f.playErr != nil {
		return f.playErr
	}
	f.played = append(f.played, trackID)
	return nil
}

func (f *fakeEngine) Toggle(ctx context.Context) (bool, error) {
	f.toggles++
	return false, nil
}

func (f *fakeEngine) Status(ctx context.Context) (playback.Status, error) {
	return playback.Status{Playing: len(f.played) > 0, Ready: true}, nil
}

func catalogTrack(id, name, artist string) music.Track {
	t := music.Track{SimpleTrack: libspotify.SimpleTrack{ID: libspotify.ID(id), Name: name, Artists: []libspotify.SimpleArtist{{Name: artist}}}}
	t.Album.Images = []libspotify.Image{{URL: "http://img/" + id}}
	return t
}

func newTestApp(fc *fakeCatalog, fe *fakeEngine) *Application {
	return &Application{
		Authenticator: fakeAuth{},
		SignKey:       testKey,
		Games:         game.NewManager(game.DefaultScoring, nil),
		NewCatalog:    func(libspotify.Client) music.Service { return fc },
		NewPlayback:   func(libspotify.Client) playback.Engine { return fe },
	}
}

// authedRequest builds a request carrying the signed session cookies of user
// "u" plus a matching CSRF header.
func authedRequest(method, target string, body io.Reader) *http.Request {
	r := httptest.NewRequest(method, target, body)
	r.AddCookie(&http.Cookie{Name: "spotify_user_id", Value: signValue("u", testKey)})
	tok, _ := json.Marshal(&oauth2.Token{AccessToken: "tok"})
	r.AddCookie(&http.Cookie{Name: "spotify_token", Value: signValue(base64.StdEncoding.EncodeToString(tok), testKey)})
	r.AddCookie(&http.Cookie{Name: "csrf_token", Value: "t"})
	r.Header.Set("X-CSRF-Token", "t")
	return r
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&m); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rr.Body.String())
	}
	return m
}

// TestGameRoundFlow drives a full round over the JSON API: start, pause,
// guess and exhaustion on the next-track request.
func TestGameRoundFlow(t *testing.T) {
	fc := &fakeCatalog{tracks: []music.Track{catalogTrack("t1", "Some Song", "Some Artist")}}
	fe := &fakeEngine{}
	app := newTestApp(fc, fe)

	rr := httptest.NewRecorder()
	app.StartGame(rr, authedRequest(http.MethodPost, "/api/game/start", strings.NewReader(`{"playlist_id":"p1"}`)))
	if rr.Code != http.StatusOK {
		t.Fatalf("start: expected 200 got %d (%s)", rr.Code, rr.Body.String())
	}
	if got := decodeBody(t, rr); got["state"] != "playing" {
		t.Fatalf("start: unexpected body %v", got)
	}
	if len(fe.played) != 1 || fe.played[0] != "t1" {
		t.Fatalf("playback not started: %v", fe.played)
	}

	rr = httptest.NewRecorder()
	app.PauseRound(rr, authedRequest(http.MethodPost, "/api/game/pause", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("pause: expected 200 got %d (%s)", rr.Code, rr.Body.String())
	}
	if got := decodeBody(t, rr); got["state"] != "guessing" {
		t.Fatalf("pause: unexpected body %v", got)
	}
	if fe.toggles != 1 {
		t.Errorf("playback toggle not invoked")
	}

	rr = httptest.NewRecorder()
	app.SubmitGuess(rr, authedRequest(http.MethodPost, "/api/game/guess", strings.NewReader(`{"title":"Some Song","artist":"Some Artist"}`)))
	if rr.Code != http.StatusOK {
		t.Fatalf("guess: expected 200 got %d (%s)", rr.Code, rr.Body.String())
	}
	got := decodeBody(t, rr)
	if got["correct"] != true {
		t.Errorf("exact guess not correct: %v", got)
	}
	track, _ := got["track"].(map[string]any)
	if track == nil || track["name"] != "Some Song" {
		t.Errorf("track not revealed: %v", got)
	}

	rr = httptest.NewRecorder()
	app.HistoryJSON(rr, authedRequest(http.MethodGet, "/api/game/history", nil))
	var entries []game.HistoryEntry
	if err := json.NewDecoder(rr.Body).Decode(&entries); err != nil || len(entries) != 1 {
		t.Fatalf("history: %v %v", err, entries)
	}

	// Single-track playlist: the next round reports exhaustion.
	rr = httptest.NewRecorder()
	app.NextRound(rr, authedRequest(http.MethodPost, "/api/game/next", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("next: expected 200 got %d", rr.Code)
	}
	if got := decodeBody(t, rr); got["status"] != "no_tracks" {
		t.Errorf("expected no_tracks, got %v", got)
	}
}

// TestStartGamePlaybackError verifies an engine failure is reported verbatim
// and leaves the round awaiting playback.
func TestStartGamePlaybackError(t *testing.T) {
	fc := &fakeCatalog{tracks: []music.Track{catalogTrack("t1", "Song", "Artist")}}
	fe := &fakeEngine{playErr: errors.New("no active device found")}
	app := newTestApp(fc, fe)

	rr := httptest.NewRecorder()
	app.StartGame(rr, authedRequest(http.MethodPost, "/api/game/start", strings.NewReader(`{"playlist_id":"p1"}`)))
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 got %d", rr.Code)
	}
	if got := decodeBody(t, rr); got["error"] != "no active device found" {
		t.Errorf("error not verbatim: %v", got)
	}

	rr = httptest.NewRecorder()
	app.GameStateJSON(rr, authedRequest(http.MethodGet, "/api/game", nil))
	got := decodeBody(t, rr)
	if got["state"] != "awaiting_playback" {
		t.Errorf("round advanced despite failure: %v", got)
	}
	if got["playback_error"] != "no active device found" {
		t.Errorf("playback error not exposed: %v", got)
	}
}

// TestStartGameEmptyPlaylist checks the recoverable no_tracks status for an
// empty playlist.
func TestStartGameEmptyPlaylist(t *testing.T) {
	app := newTestApp(&fakeCatalog{err: music.ErrEmptyPlaylist}, &fakeEngine{})

	rr := httptest.NewRecorder()
	app.StartGame(rr, authedRequest(http.MethodPost, "/api/game/start", strings.NewReader(`{"playlist_id":"p1"}`)))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
	if got := decodeBody(t, rr); got["status"] != "no_tracks" {
		t.Errorf("expected no_tracks, got %v", got)
	}
}

// TestStartGameCatalogError verifies catalog failures become a generic retry
// message instead of leaking the underlying error.
func TestStartGameCatalogError(t *testing.T) {
	app := newTestApp(&fakeCatalog{err: errors.New("spotify 503")}, &fakeEngine{})

	rr := httptest.NewRecorder()
	app.StartGame(rr, authedRequest(http.MethodPost, "/api/game/start", strings.NewReader(`{"playlist_id":"p1"}`)))
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 got %d", rr.Code)
	}
	if got := decodeBody(t, rr); strings.Contains(got["error"].(string), "503") {
		t.Errorf("internal error leaked: %v", got)
	}
}

// TestAuthenticationRequired checks the API rejects requests without session
// cookies.
func TestAuthenticationRequired(t *testing.T) {
	app := newTestApp(&fakeCatalog{}, &fakeEngine{})

	rr := httptest.NewRecorder()
	app.StartGame(rr, httptest.NewRequest(http.MethodPost, "/api/game/start", strings.NewReader(`{"playlist_id":"p"}`)))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
}

// TestCSRFRequired checks state-changing requests without the CSRF header are
// rejected.
func TestCSRFRequired(t *testing.T) {
	app := newTestApp(&fakeCatalog{}, &fakeEngine{})

	r := httptest.NewRequest(http.MethodPost, "/api/game/start", strings.NewReader(`{"playlist_id":"p"}`))
	r.AddCookie(&http.Cookie{Name: "spotify_user_id", Value: signValue("u", testKey)})
	rr := httptest.NewRecorder()
	app.StartGame(rr, r)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rr.Code)
	}
}

// TestGuessWithoutGame verifies guessing with no active game is a 404.
func TestGuessWithoutGame(t *testing.T) {
	app := newTestApp(&fakeCatalog{}, &fakeEngine{})

	rr := httptest.NewRecorder()
	app.SubmitGuess(rr, authedRequest(http.MethodPost, "/api/game/guess", strings.NewReader(`{"title":"a","artist":"b"}`)))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rr.Code)
	}
}

// TestHistoryWithoutGame returns an empty list rather than an error.
func TestHistoryWithoutGame(t *testing.T) {
	app := newTestApp(&fakeCatalog{}, &fakeEngine{})

	rr := httptest.NewRecorder()
	app.HistoryJSON(rr, authedRequest(http.MethodGet, "/api/game/history", nil))
	if rr.Code != http.StatusOK || strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Fatalf("expected empty list, got %d %q", rr.Code, rr.Body.String())
	}
}

// TestPlaylistsJSON verifies the playlist listing endpoint.
func TestPlaylistsJSON(t *testing.T) {
	fc := &fakeCatalog{playlists: []music.Playlist{{ID: "p1", Name: "Mix", TotalTracks: 3}}}
	app := newTestApp(fc, &fakeEngine{})

	rr := httptest.NewRecorder()
	app.PlaylistsJSON(rr, authedRequest(http.MethodGet, "/api/playlists", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
	var got []music.Playlist
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil || len(got) != 1 || got[0].ID != "p1" {
		t.Fatalf("unexpected playlists %v %v", got, err)
	}
}

// TestHomeHandler checks the landing page renders the login link.
func TestHomeHandler(t *testing.T) {
	app := newTestApp(&fakeCatalog{}, &fakeEngine{})
	rr := httptest.NewRecorder()
	app.Home(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if !strings.Contains(rr.Body.String(), "/login") {
		t.Errorf("login link missing from home page")
	}
}

// TestSecurityHeaders verifies the middleware decorates responses.
func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if got := rr.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("missing frame options header, got %q", got)
	}
	if csp := rr.Header().Get("Content-Security-Policy"); !strings.Contains(csp, "i.scdn.co") {
		t.Errorf("album art CDN missing from CSP: %q", csp)
	}
}

// TestSignRoundTrip exercises the cookie signing helpers including tamper
// detection.
func TestSignRoundTrip(t *testing.T) {
	signed := signValue("user", testKey)
	if v, ok := verifyValue(signed, testKey); !ok || v != "user" {
		t.Fatalf("round trip failed: %q %v", v, ok)
	}
	if _, ok := verifyValue(signed+"x", testKey); ok {
		t.Error("tampered value verified")
	}
	if _, ok := verifyValue(signed, []byte("other-key")); ok {
		t.Error("wrong key verified")
	}
}
