// manload-service — crew/job scheduling and manpower forecasting.
//
// In-memory roster core (workers, jobs, assignments) with:
//   - assignment engine enforcing capacity, role, and booking rules
//   - division-scoped Gantt timeline and daily manpower forecast
//   - Postgres snapshot persistence and Redis change notifications
//   - CSV import/export for workers and jobs
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"crcustom/manload-service/internal/config"
	"crcustom/manload-service/internal/csvio"
	"crcustom/manload-service/internal/db"
	"crcustom/manload-service/internal/persist"
	"crcustom/manload-service/internal/roster"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[manload-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[manload-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[manload-service] PostgreSQL: %v", err)
	}
	defer pool.Close()
	log.Println("[manload-service] PostgreSQL connected ✓")

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[manload-service] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[manload-service] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[manload-service] Redis connected ✓")

	// ── Roster store + persistence ───────────────────────────────────────────
	store := roster.NewStore()
	storage := persist.NewStorage(pool, rdb, instanceID())

	if err := storage.EnsureSchema(ctx); err != nil {
		log.Fatalf("[manload-service] Schema: %v", err)
	}

	workers, jobs, err := storage.Load(ctx)
	if err != nil {
		log.Fatalf("[manload-service] Initial load: %v", err)
	}
	store.ReplaceWorkers(workers)
	store.ReplaceJobs(jobs)
	log.Printf("[manload-service] Roster loaded (%d workers, %d jobs)", len(workers), len(jobs))

	sched := persist.NewScheduler(store, storage, time.Duration(cfg.SaveIntervalSeconds)*time.Second)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[manload-service] Autosave: %v", err)
	}

	sub := persist.NewSubscriber(rdb, storage, store, storage.Origin())
	go sub.Run(ctx)

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)

	roster.NewHandler(store, sched.Kick).RegisterRoutes(mux)
	csvio.NewHandler(store, sched.Kick).RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[manload-service] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[manload-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[manload-service] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[manload-service] Shutdown error: %v", err)
	}
	sched.Stop(shutdownCtx)
	log.Println("[manload-service] Stopped.")
}

// instanceID names this process in change notifications so it can skip the
// ones it published itself.
func instanceID() string {
	host, err := os.Hostname()
	if err != nil {
		host = "manload"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "manload-service",
		"version": version,
	})
}
