package main

import (
	"net/http"

	"github.com/google/uuid"
)

func (a *app) loginPath(w http.ResponseWriter, r *http.Request) error {
	state := uuid.NewString()
	if err := a.saveState(w, r, state); err != nil {
		return internalError("failed to start login", err)
	}

	return render(w, "login.html.tmpl", map[string]string{
		"LoginUrl": a.auth.AuthURL(state),
	})
}

func (a *app) completeAuthPath(w http.ResponseWriter, r *http.Request) error {
	state, err := a.popState(w, r)
	if err != nil {
		return validationError("missing OAuth state")
	}
	if st := r.FormValue("state"); st != state {
		a.log.WarnContext(r.Context(), "State mismatch", "got", st)
		return validationError("invalid OAuth state")
	}

	tok, err := a.auth.Token(r.Context(), state, r)
	if err != nil {
		return forbiddenError("Couldn't get token", err)
	}

	if err := a.saveToken(w, r, tok); err != nil {
		return internalError("failed to store session", err)
	}

	a.log.InfoContext(r.Context(), "Login completed")
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
	return nil
}

func (a *app) logoutPath(w http.ResponseWriter, r *http.Request) error {
	a.clearSession(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
	return nil
}
