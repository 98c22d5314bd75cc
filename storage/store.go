package storage

import (
	"context"
	"errors"
	"fmt"

	"listing_studio/config"
)

// ErrNotFound is returned by Get when the key has never been written (or has
// expired).
var ErrNotFound = errors.New("not found")

// Store is the key/value persistence the pipeline checkpoints into.
type Store interface {
	Put(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// Lister is implemented by stores that can enumerate keys. Only the render
// sweep needs it.
type Lister interface {
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Backend is what every concrete store provides.
type Backend interface {
	Store
	Lister
	Close() error
}

// Open connects the backend named by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Backend, error) {
	var (
		b   Backend
		err error
	)
	switch cfg.Driver {
	case "", "sqlite":
		var s *SQLiteStore
		if s, err = NewSQLiteStore(cfg.DBPath); err == nil {
			b = s
		}
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("STORE_DRIVER=postgres requires DATABASE_URL")
		}
		var s *PostgresStore
		if s, err = NewPostgresStore(ctx, cfg.DatabaseURL); err == nil {
			b = s
		}
	case "redis":
		var s *RedisStore
		if s, err = NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.JobTTL); err == nil {
			b = s
		}
	case "memory":
		b = NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Driver, err)
	}
	return b, nil
}
