package kvstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sort"

	"labeling-service/internal/models"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrations embed.FS

// PostgresStore keeps keys in a PostgreSQL table so several machines can share a queue.
type PostgresStore struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewPostgres connects to url and applies pending migrations.
func NewPostgres(url string, logger *zap.Logger) (*PostgresStore, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: postgres url is required", models.ErrPersistence)
	}

	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to database: %w", models.ErrPersistence, err)
	}

	if err := migratePostgres(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to migrate database: %w", models.ErrPersistence, err)
	}

	logger.Info("Key-value store initialized", zap.String("backend", TypePostgres))

	return &PostgresStore{db: db, logger: logger}, nil
}

func migratePostgres(db *sqlx.DB) error {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

const postgresUpsert = `
	INSERT INTO kv_entries (key, value, updated_at) VALUES ($1, $2, NOW())
	ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
`

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.GetContext(ctx, &value, "SELECT value FROM kv_entries WHERE key = $1", key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: failed to read %q: %w", models.ErrPersistence, key, err)
	}
	return value, true, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, postgresUpsert, key, value); err != nil {
		return fmt.Errorf("%w: failed to write %q: %w", models.ErrPersistence, key, err)
	}
	return nil
}

func (s *PostgresStore) SetMany(ctx context.Context, entries map[string][]byte) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", models.ErrPersistence, err)
	}
	defer tx.Rollback()

	for _, key := range sortedKeys(entries) {
		if _, err := tx.ExecContext(ctx, postgresUpsert, key, entries[key]); err != nil {
			return fmt.Errorf("%w: failed to write %q: %w", models.ErrPersistence, key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit transaction: %w", models.ErrPersistence, err)
	}
	return nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// sortedKeys gives multi-key writes a stable lock order.
func sortedKeys(entries map[string][]byte) []string {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
