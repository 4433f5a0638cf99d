// Package db opens and verifies the service's external connections: the
// Postgres pool backing the roster snapshots and the Redis client carrying
// change notifications.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPostgresPool opens a pgxpool against databaseURL and pings it so a bad
// DSN fails at startup, not on the first snapshot save.
func NewPostgresPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New(%q): %w", databaseURL, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	return pool, nil
}
