package main

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Backup records one copied playlist.
type Backup struct {
	bun.BaseModel `bun:"table:backups,alias:b" json:"-"`

	ID               uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	UserID           string    `bun:"user_id,notnull" json:"user_id"`
	SourcePlaylistID string    `bun:"source_playlist_id,notnull" json:"source_playlist_id"`
	PlaylistID       string    `bun:"playlist_id,notnull" json:"playlist_id"`
	Name             string    `bun:"name,notnull" json:"name"`
	TrackCount       int       `bun:"track_count,notnull" json:"track_count"`
	CreatedAt        time.Time `bun:"created_at,notnull" json:"created_at"`
}

// BackupStore keeps the backup history shown on /home.
type BackupStore interface {
	Save(ctx context.Context, b Backup) error
	// ListByUser returns at most limit backups, newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]Backup, error)
	Close() error
}

func openBackupStore(ctx context.Context, databaseURL string) (BackupStore, error) {
	if databaseURL == "" {
		return newMemoryBackupStore(), nil
	}
	return newBunBackupStore(ctx, databaseURL)
}

type memoryBackupStore struct {
	mu      sync.RWMutex
	backups map[string][]Backup
}

func newMemoryBackupStore() *memoryBackupStore {
	return &memoryBackupStore{backups: make(map[string][]Backup)}
}

func (s *memoryBackupStore) Save(_ context.Context, b Backup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.backups[b.UserID] = append(s.backups[b.UserID], b)
	return nil
}

func (s *memoryBackupStore) ListByUser(_ context.Context, userID string, limit int) ([]Backup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Backup, len(s.backups[userID]))
	copy(out, s.backups[userID])

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memoryBackupStore) Close() error { return nil }
