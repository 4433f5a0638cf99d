// Package persist is the persistence adapter for the roster core. It owns
// the persisted layout: two whole-collection JSONB rows (workers, jobs),
// written last-writer-wins, plus a Redis pub/sub channel that tells other
// instances a snapshot changed. The core never sees any of this; it exposes
// bulk replace and snapshot queries, and this package drives them.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"crcustom/manload-service/internal/roster"
)

// changeChannel carries roster-changed notifications between instances.
const changeChannel = "EVENT_ROSTER_CHANGED"

// changeEvent is the pub/sub payload. Origin lets an instance skip its own
// notifications.
type changeEvent struct {
	Type   string `json:"type"`
	Origin string `json:"origin"`
}

// Storage reads and writes roster snapshots.
type Storage struct {
	pool   *pgxpool.Pool
	rdb    *redis.Client
	origin string
}

// NewStorage returns a configured Storage. origin identifies this process in
// change notifications.
func NewStorage(pool *pgxpool.Pool, rdb *redis.Client, origin string) *Storage {
	return &Storage{pool: pool, rdb: rdb, origin: origin}
}

// Origin returns the process identity used in change notifications.
func (s *Storage) Origin() string { return s.origin }

// EnsureSchema creates the snapshot table when missing.
func (s *Storage) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS roster_snapshots (
		   collection text PRIMARY KEY,
		   data       jsonb NOT NULL,
		   updated_at timestamptz NOT NULL DEFAULT NOW()
		 )`)
	if err != nil {
		return fmt.Errorf("ensure roster_snapshots: %w", err)
	}
	return nil
}

// Save persists both collections and notifies other instances. The publish
// is non-fatal: a missed notification only delays the next reload.
func (s *Storage) Save(ctx context.Context, workers []roster.Worker, jobs []roster.Job) error {
	if err := s.saveCollection(ctx, "workers", workers); err != nil {
		return err
	}
	if err := s.saveCollection(ctx, "jobs", jobs); err != nil {
		return err
	}

	event, _ := json.Marshal(changeEvent{Type: changeChannel, Origin: s.origin})
	if err := s.rdb.Publish(ctx, changeChannel, event).Err(); err != nil {
		slog.Warn("publish roster change failed", "err", err)
	}
	return nil
}

func (s *Storage) saveCollection(ctx context.Context, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO roster_snapshots (collection, data, updated_at)
		 VALUES ($1, $2::jsonb, NOW())
		 ON CONFLICT (collection) DO UPDATE
		 SET data = EXCLUDED.data, updated_at = NOW()`,
		name, string(data),
	)
	if err != nil {
		return fmt.Errorf("save %s snapshot: %w", name, err)
	}
	return nil
}

// Load reads both collections. Missing rows yield empty collections, not an
// error — a fresh database is a valid empty roster.
func (s *Storage) Load(ctx context.Context) ([]roster.Worker, []roster.Job, error) {
	workers := make([]roster.Worker, 0)
	if err := s.loadCollection(ctx, "workers", &workers); err != nil {
		return nil, nil, err
	}
	jobs := make([]roster.Job, 0)
	if err := s.loadCollection(ctx, "jobs", &jobs); err != nil {
		return nil, nil, err
	}
	return workers, jobs, nil
}

func (s *Storage) loadCollection(ctx context.Context, name string, out any) error {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM roster_snapshots WHERE collection = $1`, name,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("load %s snapshot: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s snapshot: %w", name, err)
	}
	return nil
}
