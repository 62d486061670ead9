package main

import "net/http"

type meResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

func (a *app) meAPI(w http.ResponseWriter, r *http.Request) error {
	_, user, err := a.currentUser(w, r)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, meResponse{ID: user.ID, DisplayName: displayName(user)})
	return nil
}

func (a *app) backupsAPI(w http.ResponseWriter, r *http.Request) error {
	_, user, err := a.currentUser(w, r)
	if err != nil {
		return err
	}

	backups, err := a.backups.ListByUser(r.Context(), user.ID, a.cfg.BackupHistoryLimit)
	if err != nil {
		return internalError("failed to load backups", err)
	}
	if backups == nil {
		backups = []Backup{}
	}

	writeJSON(w, http.StatusOK, backups)
	return nil
}
