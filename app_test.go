package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	spotify "github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
)

var testNow = time.Date(2024, time.January, 10, 12, 0, 0, 0, time.UTC)

type fakeSpotify struct {
	user    *spotify.PrivateUser
	userErr error

	search    *spotify.SearchResult
	searchErr error

	playlist  *spotify.FullPlaylist
	createErr error
	created   []string

	pages     []*spotify.PlaylistItemPage
	pageCalls int

	added []spotify.ID
}

func (f *fakeSpotify) CurrentUser(_ context.Context) (*spotify.PrivateUser, error) {
	if f.userErr != nil {
		return nil, f.userErr
	}
	return f.user, nil
}

func (f *fakeSpotify) Search(_ context.Context, _ string, _ spotify.SearchType, _ ...spotify.RequestOption) (*spotify.SearchResult, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if f.search == nil {
		return &spotify.SearchResult{}, nil
	}
	return f.search, nil
}

func (f *fakeSpotify) GetPlaylist(_ context.Context, id spotify.ID, _ ...spotify.RequestOption) (*spotify.FullPlaylist, error) {
	if f.playlist == nil {
		return nil, errors.New("playlist not configured")
	}
	return f.playlist, nil
}

func (f *fakeSpotify) CreatePlaylistForUser(_ context.Context, _, name, _ string, _ bool, _ bool) (*spotify.FullPlaylist, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, name)
	return &spotify.FullPlaylist{SimplePlaylist: spotify.SimplePlaylist{ID: "backup-playlist", Name: name}}, nil
}

func (f *fakeSpotify) GetPlaylistItems(_ context.Context, _ spotify.ID, _ ...spotify.RequestOption) (*spotify.PlaylistItemPage, error) {
	if f.pageCalls >= len(f.pages) {
		return &spotify.PlaylistItemPage{}, nil
	}
	page := f.pages[f.pageCalls]
	f.pageCalls++
	return page, nil
}

func (f *fakeSpotify) AddTracksToPlaylist(_ context.Context, _ spotify.ID, trackIDs ...spotify.ID) (string, error) {
	f.added = append(f.added, trackIDs...)
	return "snapshot", nil
}

type fakeAuth struct {
	token    *oauth2.Token
	tokenErr error
}

func (f *fakeAuth) AuthURL(state string, _ ...oauth2.AuthCodeOption) string {
	return "https://accounts.example.com/authorize?state=" + url.QueryEscape(state)
}

func (f *fakeAuth) Token(_ context.Context, _ string, _ *http.Request, _ ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	if f.tokenErr != nil {
		return nil, f.tokenErr
	}
	return f.token, nil
}

func testConfig() *config {
	return &config{
		AppEnv:             "test",
		Port:               "8080",
		BaseURL:            "http://localhost:8080",
		SpotifyID:          "client-id",
		SpotifySecret:      "client-secret",
		SessionSecret:      "0123456789abcdef0123456789abcdef",
		SessionMaxAge:      time.Hour,
		LogLevel:           "info",
		LogFormat:          "text",
		BackupHistoryLimit: 10,
		AuthRatePerSecond:  1,
		AuthRateBurst:      5,
	}
}

type testEnv struct {
	app     *app
	spotify *fakeSpotify
	auth    *fakeAuth
	backups *memoryBackupStore
	handler http.Handler

	// renewed, when set, is what the token source hands out in place of the session token.
	renewed *oauth2.Token
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	fs := &fakeSpotify{
		user: &spotify.PrivateUser{User: spotify.User{ID: "user-1", DisplayName: "Jane"}},
	}
	fa := &fakeAuth{token: &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer", Expiry: testNow.Add(time.Hour)}}
	store := newMemoryBackupStore()

	env := &testEnv{spotify: fs, auth: fa, backups: store}

	tokens := func(_ context.Context, tok *oauth2.Token) oauth2.TokenSource {
		if env.renewed != nil {
			return oauth2.StaticTokenSource(env.renewed)
		}
		return oauth2.StaticTokenSource(tok)
	}
	clients := func(context.Context, oauth2.TokenSource) spotifyAPI { return fs }
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	env.app = newApp(testConfig(), log, fa, tokens, clients, store, clockwork.NewFakeClockAt(testNow))
	env.handler = env.app.routes()
	return env
}

// sessionCookie returns the cookie a browser would hold after a successful login.
func (e *testEnv) sessionCookie(t *testing.T) *http.Cookie {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, e.app.saveToken(rec, req, e.auth.token))

	return lastCookie(t, rec)
}

func (e *testEnv) do(method, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func lastCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	var found *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionName {
			found = c
		}
	}
	require.NotNil(t, found, "no %s cookie set", sessionName)
	return found
}

func requestWithCookie(c *http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	return req
}
