package main

import (
	"context"
	"fmt"
	"time"

	"github.com/goodtune/equtil/internal/config"
	"github.com/goodtune/equtil/internal/storage"
	"github.com/goodtune/equtil/internal/storage/redis"
)

// openStorage opens the configured session store.
func openStorage(cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Type {
	case "redis":
		return redis.Open(cfg.Redis)
	default:
		return nil, fmt.Errorf("storage type %q does not hold sessions; set storage.type to redis", cfg.Type)
	}
}

// storageContext bounds a storage call by the configured read timeout.
func storageContext(cfg config.StorageConfig) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), parseDuration(cfg.Redis.ReadTimeout, 3*time.Second)*10)
}

// parseDuration parses a duration string with a fallback
func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
