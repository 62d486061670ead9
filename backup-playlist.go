package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	spotify "github.com/zmb3/spotify/v2"
)

const (
	sourcePlaylistQuery = "Discover Weekly"
	playlistPageSize    = 100
)

func (a *app) backupPath(w http.ResponseWriter, r *http.Request) error {
	client, user, err := a.currentUser(w, r)
	if err != nil {
		return err
	}

	ctx := r.Context()

	playlists, err := client.Search(ctx, sourcePlaylistQuery, spotify.SearchTypePlaylist)
	if err != nil {
		a.metrics.backups.WithLabelValues("failed").Inc()
		return classify("failed to search playlists", err)
	}
	if playlists.Playlists == nil || len(playlists.Playlists.Playlists) == 0 {
		a.metrics.backups.WithLabelValues("not_found").Inc()
		return notFoundError("no Discover Weekly playlist found")
	}

	year, week := a.clock.Now().ISOWeek()
	name := fmt.Sprintf("%s %d-%d", sourcePlaylistQuery, year, week)

	backup, err := a.backupPlaylist(ctx, client, playlists.Playlists.Playlists[0].ID, name, user.ID)
	if err != nil {
		a.metrics.backups.WithLabelValues("failed").Inc()
		return err
	}

	if err := a.backups.Save(ctx, *backup); err != nil {
		a.metrics.backups.WithLabelValues("failed").Inc()
		a.log.ErrorContext(ctx, "Backup playlist created but not recorded", "user_id", user.ID, "playlist", backup.PlaylistID, "name", backup.Name, "error", err)
		return internalError("failed to record backup", err)
	}

	a.metrics.backups.WithLabelValues("created").Inc()
	a.log.InfoContext(ctx, "Backup created", "user_id", user.ID, "playlist", backup.PlaylistID, "tracks", backup.TrackCount)

	http.Redirect(w, r, "/", http.StatusSeeOther)
	return nil
}

func (a *app) backupPlaylist(ctx context.Context, client spotifyAPI, playlistID spotify.ID, newPlaylistName string, userID string) (*Backup, error) {
	playlist, err := client.GetPlaylist(ctx, playlistID)
	if err != nil {
		return nil, classify("failed to get playlist", err)
	}

	now := a.clock.Now()
	description := "This is a backup of: \"" + playlist.Name + "\" made on " + now.Local().String()

	newPlaylist, err := client.CreatePlaylistForUser(ctx, userID, newPlaylistName, description, false, false)
	if err != nil {
		return nil, classify("failed to create playlist", err)
	}

	copied := 0
	for offset := 0; ; {
		items, err := client.GetPlaylistItems(ctx, playlistID, spotify.Limit(playlistPageSize), spotify.Offset(offset))
		if err != nil {
			return nil, classify("failed to get playlist items", err)
		}

		var trackIDs []spotify.ID
		for _, item := range items.Items {
			if item.Track.Track != nil {
				trackIDs = append(trackIDs, item.Track.Track.ID)
			}
		}

		if len(trackIDs) > 0 {
			if _, err := client.AddTracksToPlaylist(ctx, newPlaylist.ID, trackIDs...); err != nil {
				return nil, classify("failed to add tracks to playlist", err)
			}
			copied += len(trackIDs)
		}

		// Pages may come back shorter than requested before the end.
		offset += len(items.Items)
		if len(items.Items) == 0 || offset >= items.Total {
			break
		}
	}

	return &Backup{
		ID:               uuid.New(),
		UserID:           userID,
		SourcePlaylistID: string(playlistID),
		PlaylistID:       string(newPlaylist.ID),
		Name:             newPlaylistName,
		TrackCount:       copied,
		CreatedAt:        now,
	}, nil
}
