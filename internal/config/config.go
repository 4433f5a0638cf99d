// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits with an error.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all runtime configuration for the manload service.
type Config struct {
	Port                string
	DatabaseURL         string
	RedisURL            string
	SaveIntervalSeconds int // how often the autosave scheduler flushes dirty state
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	port := os.Getenv("MANLOAD_PORT")
	if port == "" {
		port = "8084"
	}

	interval := 15
	if s := os.Getenv("SAVE_INTERVAL_SECONDS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("SAVE_INTERVAL_SECONDS must be a positive integer, got %q", s)
		}
		interval = v
	}

	return &Config{
		Port:                port,
		DatabaseURL:         dbURL,
		RedisURL:            redisURL,
		SaveIntervalSeconds: interval,
	}, nil
}
