package persist

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"crcustom/manload-service/internal/roster"
)

// Scheduler flushes dirty roster state to storage: on a cron interval, and
// immediately when Kick is called after a mutation. A flush is skipped when
// the store revision has not moved since the last successful save.
type Scheduler struct {
	cron    *cron.Cron
	store   *roster.Store
	storage *Storage
	spec    string // cron spec, e.g. "@every 15s"
	kick    chan struct{}

	mu        sync.Mutex
	lastSaved uint64
}

// NewScheduler creates a Scheduler that fires every interval.
func NewScheduler(store *roster.Store, storage *Storage, interval time.Duration) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLogger(cron.DefaultLogger)),
		store:   store,
		storage: storage,
		spec:    fmt.Sprintf("@every %s", interval),
		kick:    make(chan struct{}, 1),
	}
}

// Start registers the flush job and starts the scheduler, plus a goroutine
// draining Kick signals so mutations persist without waiting for the tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.flush(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[manload-service] Autosave started — spec: %s", s.spec)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.kick:
				s.flush(ctx)
			}
		}
	}()

	return nil
}

// Kick requests an asynchronous flush. Non-blocking: a pending request is
// enough, the flush reads the latest state anyway.
func (s *Scheduler) Kick() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Stop halts the cron loop and performs one final flush so shutdown never
// loses acknowledged mutations.
func (s *Scheduler) Stop(ctx context.Context) {
	s.cron.Stop()
	s.flush(ctx)
	log.Println("[manload-service] Autosave stopped")
}

func (s *Scheduler) flush(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rev := s.store.Revision()
	if rev == s.lastSaved {
		return
	}
	if err := s.storage.Save(ctx, s.store.Workers(), s.store.Jobs()); err != nil {
		log.Printf("[manload-service] Snapshot save failed: %v", err)
		return
	}
	s.lastSaved = rev
}
