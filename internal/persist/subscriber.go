package persist

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"

	"crcustom/manload-service/internal/roster"
)

// Subscriber listens for roster-changed notifications from other instances
// and replaces the local collections wholesale from the stored snapshot.
// Derived views are recomputed on the next read; there is no incremental
// diffing.
type Subscriber struct {
	rdb     *redis.Client
	storage *Storage
	store   *roster.Store
	origin  string
}

// NewSubscriber returns a configured Subscriber. origin must match the
// Storage origin so the instance's own saves are skipped.
func NewSubscriber(rdb *redis.Client, storage *Storage, store *roster.Store, origin string) *Subscriber {
	return &Subscriber{rdb: rdb, storage: storage, store: store, origin: origin}
}

// Run blocks consuming notifications until ctx is cancelled. Intended to be
// launched as a goroutine from main.
func (s *Subscriber) Run(ctx context.Context) {
	sub := s.rdb.Subscribe(ctx, changeChannel)
	defer sub.Close()

	log.Printf("[manload-service] Subscribed to %s", changeChannel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			s.handle(ctx, msg.Payload)
		}
	}
}

func (s *Subscriber) handle(ctx context.Context, payload string) {
	var ev changeEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		log.Printf("[manload-service] Bad change event: %v", err)
		return
	}
	if ev.Origin == s.origin {
		return // our own save
	}

	workers, jobs, err := s.storage.Load(ctx)
	if err != nil {
		log.Printf("[manload-service] Reload after change failed: %v", err)
		return
	}
	s.store.ReplaceWorkers(workers)
	s.store.ReplaceJobs(jobs)
	log.Printf("[manload-service] Roster replaced from remote change (%d workers, %d jobs)", len(workers), len(jobs))
}
