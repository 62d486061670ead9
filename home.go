package main

import (
	"bytes"
	"net/http"

	spotify "github.com/zmb3/spotify/v2"
)

type homeData struct {
	Region   string
	Username string
	UserID   string
	Backups  []Backup
}

func (a *app) homePath(w http.ResponseWriter, r *http.Request) error {
	_, user, err := a.currentUser(w, r)
	if err != nil {
		return err
	}

	backups, err := a.backups.ListByUser(r.Context(), user.ID, a.cfg.BackupHistoryLimit)
	if err != nil {
		return internalError("failed to load backups", err)
	}

	return render(w, "index.logged-in.html.tmpl", homeData{
		Region:   a.cfg.Region,
		Username: displayName(user),
		UserID:   user.ID,
		Backups:  backups,
	})
}

// currentUser makes the session-backed API call every signed-in route starts with.
// A missing session fails the same way the provider's 401 does. A token renewed
// during the call is written back to the session cookie.
func (a *app) currentUser(w http.ResponseWriter, r *http.Request) (spotifyAPI, *spotify.PrivateUser, error) {
	tok, err := a.loadToken(r)
	if err != nil {
		return nil, nil, unauthorizedError(err)
	}

	ts := a.tokens(r.Context(), tok)
	client := a.clients(r.Context(), ts)

	user, err := client.CurrentUser(r.Context())
	if err != nil {
		return nil, nil, classify("failed to load Spotify profile", err)
	}

	if fresh, err := ts.Token(); err == nil && fresh.AccessToken != tok.AccessToken {
		if err := a.saveToken(w, r, fresh); err != nil {
			a.log.WarnContext(r.Context(), "Failed to store refreshed token", "error", err)
		}
	}

	return client, user, nil
}

func displayName(user *spotify.PrivateUser) string {
	if user.DisplayName != "" {
		return user.DisplayName
	}
	return user.ID
}

func render(w http.ResponseWriter, name string, data any) error {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return internalError("failed to render page", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
	return nil
}
