// Package kvstore provides durable key-value storage for the labeling client.
package kvstore

import (
	"context"
	"fmt"

	"labeling-service/internal/models"

	"go.uber.org/zap"
)

// Store is a minimal durable key-value store.
type Store interface {
	// Get returns the value for key. found is false when the key was never written.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	// Set writes a single key.
	Set(ctx context.Context, key string, value []byte) error
	// SetMany writes all entries atomically: either every key is updated or none is.
	SetMany(ctx context.Context, entries map[string][]byte) error
	Close() error
}

// Storage backends accepted by Open.
const (
	TypeMemory   = "memory"
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// Config selects and locates a backend.
type Config struct {
	Type string `yaml:"type"` // "memory", "sqlite" or "postgres"
	Path string `yaml:"path"` // SQLite file path
	URL  string `yaml:"url"`  // PostgreSQL connection URL
}

// Open constructs the configured backend.
func Open(cfg Config, logger *zap.Logger) (Store, error) {
	switch cfg.Type {
	case TypeMemory:
		return NewMemory(), nil
	case TypeSQLite, "":
		return NewSQLite(cfg.Path, logger)
	case TypePostgres:
		return NewPostgres(cfg.URL, logger)
	default:
		return nil, fmt.Errorf("%w: unknown storage type %q", models.ErrPersistence, cfg.Type)
	}
}
