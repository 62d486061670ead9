package main

import (
	"crypto/sha256"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"golang.org/x/oauth2"
)

const (
	sessionName = "backup-session"

	sessionKeyAccessToken  = "access_token"
	sessionKeyRefreshToken = "refresh_token"
	sessionKeyTokenType    = "token_type"
	sessionKeyExpiry       = "expiry"
	sessionKeyOAuthState   = "oauth_state"
)

// The session lives in the client's cookie jar; the server keeps nothing.
// Cookies are signed with SESSION_SECRET and encrypted with a key derived from it.
func newSessionStore(cfg *config) *sessions.CookieStore {
	blockKey := sha256.Sum256([]byte("session-encryption:" + cfg.SessionSecret))

	store := sessions.NewCookieStore([]byte(cfg.SessionSecret), blockKey[:])
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.production(),
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(int(cfg.SessionMaxAge.Seconds()))
	return store
}

// loadToken returns errNoSession for an absent, undecodable or empty session cookie,
// and for an expired token that has no refresh token to renew it.
func (a *app) loadToken(r *http.Request) (*oauth2.Token, error) {
	session, err := a.sessions.Get(r, sessionName)
	if err != nil || session.IsNew {
		return nil, errNoSession
	}

	access, _ := session.Values[sessionKeyAccessToken].(string)
	if access == "" {
		return nil, errNoSession
	}

	tok := &oauth2.Token{AccessToken: access}
	tok.RefreshToken, _ = session.Values[sessionKeyRefreshToken].(string)
	tok.TokenType, _ = session.Values[sessionKeyTokenType].(string)
	if expiry, ok := session.Values[sessionKeyExpiry].(int64); ok && expiry > 0 {
		tok.Expiry = time.Unix(expiry, 0)
	}
	if tok.RefreshToken == "" && !tok.Expiry.IsZero() && !tok.Expiry.After(a.clock.Now()) {
		return nil, errNoSession
	}

	return tok, nil
}

// saveToken replaces whatever session the client held with one carrying only tok.
func (a *app) saveToken(w http.ResponseWriter, r *http.Request, tok *oauth2.Token) error {
	session, err := a.sessions.New(r, sessionName)
	if err != nil {
		// New returns a usable empty session even when the old cookie failed to decode.
		a.log.DebugContext(r.Context(), "Discarding undecodable session", "error", err)
	}

	session.Values = map[interface{}]interface{}{
		sessionKeyAccessToken:  tok.AccessToken,
		sessionKeyRefreshToken: tok.RefreshToken,
		sessionKeyTokenType:    tok.TokenType,
	}
	if !tok.Expiry.IsZero() {
		session.Values[sessionKeyExpiry] = tok.Expiry.Unix()
	}

	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (a *app) saveState(w http.ResponseWriter, r *http.Request, state string) error {
	session, _ := a.sessions.Get(r, sessionName)
	session.Values[sessionKeyOAuthState] = state
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to save OAuth state: %w", err)
	}
	return nil
}

// popState returns the stored OAuth state and removes it from the session.
func (a *app) popState(w http.ResponseWriter, r *http.Request) (string, error) {
	session, err := a.sessions.Get(r, sessionName)
	if err != nil {
		return "", errNoSession
	}

	state, _ := session.Values[sessionKeyOAuthState].(string)
	if state == "" {
		return "", errNoSession
	}

	delete(session.Values, sessionKeyOAuthState)
	if err := session.Save(r, w); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}
	return state, nil
}

func (a *app) clearSession(w http.ResponseWriter, r *http.Request) {
	session, _ := a.sessions.Get(r, sessionName)
	session.Values = map[interface{}]interface{}{}
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		a.log.ErrorContext(r.Context(), "Failed to clear session", "error", err)
	}
}
