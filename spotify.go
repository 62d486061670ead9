package main

import (
	"context"
	"net/http"

	spotify "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

// spotifyAPI is the part of *spotify.Client the handlers use.
type spotifyAPI interface {
	CurrentUser(ctx context.Context) (*spotify.PrivateUser, error)
	Search(ctx context.Context, query string, t spotify.SearchType, opts ...spotify.RequestOption) (*spotify.SearchResult, error)
	GetPlaylist(ctx context.Context, playlistID spotify.ID, opts ...spotify.RequestOption) (*spotify.FullPlaylist, error)
	CreatePlaylistForUser(ctx context.Context, userID, playlistName, description string, public bool, collaborative bool) (*spotify.FullPlaylist, error)
	GetPlaylistItems(ctx context.Context, playlistID spotify.ID, opts ...spotify.RequestOption) (*spotify.PlaylistItemPage, error)
	AddTracksToPlaylist(ctx context.Context, playlistID spotify.ID, trackIDs ...spotify.ID) (string, error)
}

// authenticator covers the OAuth half of *spotifyauth.Authenticator.
type authenticator interface {
	AuthURL(state string, opts ...oauth2.AuthCodeOption) string
	Token(ctx context.Context, state string, r *http.Request, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
}

func newAuthenticator(cfg *config) *spotifyauth.Authenticator {
	return spotifyauth.New(
		spotifyauth.WithClientID(cfg.SpotifyID),
		spotifyauth.WithClientSecret(cfg.SpotifySecret),
		spotifyauth.WithRedirectURL(cfg.callbackURL()),
		spotifyauth.WithScopes(
			spotifyauth.ScopeUserReadPrivate,
			spotifyauth.ScopePlaylistReadCollaborative,
			spotifyauth.ScopePlaylistModifyPrivate,
			spotifyauth.ScopePlaylistReadPrivate,
		),
	)
}

// tokenSources wraps a session token in a source that refreshes it once it expires.
type tokenSources func(ctx context.Context, tok *oauth2.Token) oauth2.TokenSource

func newTokenSources(cfg *config) tokenSources {
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.SpotifyID,
		ClientSecret: cfg.SpotifySecret,
		RedirectURL:  cfg.callbackURL(),
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyauth.AuthURL,
			TokenURL: spotifyauth.TokenURL,
		},
	}
	return func(ctx context.Context, tok *oauth2.Token) oauth2.TokenSource {
		return oauthCfg.TokenSource(ctx, tok)
	}
}

// spotifyClients builds an API client authorised by ts.
type spotifyClients func(ctx context.Context, ts oauth2.TokenSource) spotifyAPI

func newSpotifyClients() spotifyClients {
	return func(ctx context.Context, ts oauth2.TokenSource) spotifyAPI {
		return spotify.New(oauth2.NewClient(ctx, ts))
	}
}
