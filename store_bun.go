package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type bunBackupStore struct {
	db *bun.DB
}

func newBunBackupStore(ctx context.Context, dsn string) (*bunBackupStore, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	_, err := db.NewCreateTable().
		Model((*Backup)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create backups table: %w", err)
	}

	return &bunBackupStore{db: db}, nil
}

func (s *bunBackupStore) Save(ctx context.Context, b Backup) error {
	if _, err := s.db.NewInsert().Model(&b).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert backup: %w", err)
	}
	return nil
}

func (s *bunBackupStore) ListByUser(ctx context.Context, userID string, limit int) ([]Backup, error) {
	var backups []Backup
	err := s.db.NewSelect().
		Model(&backups).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}
	return backups, nil
}

func (s *bunBackupStore) Close() error {
	return s.db.Close()
}
