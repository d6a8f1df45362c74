package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"labeling-service/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// LabelRepository stores sentences and labels for the labeling service.
type LabelRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewLabelRepository creates a new repository
func NewLabelRepository(dbPath string, logger *zap.Logger) (*LabelRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	repo := &LabelRepository{
		db:     db,
		logger: logger,
	}

	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info("Label repository initialized", zap.String("db_path", dbPath))

	return repo, nil
}

// migrate creates tables
func (r *LabelRepository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sentences (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		text TEXT NOT NULL,
		batch_id TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		labeled BOOLEAN NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_sentences_labeled ON sentences(labeled);
	CREATE INDEX IF NOT EXISTS idx_sentences_text ON sentences(text);

	CREATE TABLE IF NOT EXISTS labels (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		text TEXT NOT NULL,
		category TEXT NOT NULL,
		source TEXT NOT NULL,
		labeled_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_labels_category ON labels(category);
	`

	_, err := r.db.Exec(schema)
	return err
}

// SaveSentences stores one batch of sentences in insertion order.
func (r *LabelRepository) SaveSentences(ctx context.Context, batchID string, texts []string) ([]*models.Sentence, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	saved := make([]*models.Sentence, 0, len(texts))
	for _, text := range texts {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO sentences (text, batch_id, created_at, labeled) VALUES (?, ?, ?, 0)`,
			text, batchID, now)
		if err != nil {
			return nil, fmt.Errorf("failed to save sentence: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to get last insert id: %w", err)
		}

		saved = append(saved, &models.Sentence{ID: id, Text: text, BatchID: batchID, CreatedAt: now})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit sentences: %w", err)
	}

	return saved, nil
}

// RandomUnlabeled picks one unlabeled sentence at random.
func (r *LabelRepository) RandomUnlabeled(ctx context.Context) (*models.Sentence, error) {
	s := &models.Sentence{}
	err := r.db.GetContext(ctx, s, `
		SELECT id, text, batch_id, created_at, labeled
		FROM sentences
		WHERE labeled = 0
		ORDER BY RANDOM()
		LIMIT 1
	`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no unlabeled sentences", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get random sentence: %w", err)
	}

	return s, nil
}

// UnlabeledSentences lists unlabeled sentences oldest first.
func (r *LabelRepository) UnlabeledSentences(ctx context.Context) ([]*models.Sentence, error) {
	var sentences []*models.Sentence
	err := r.db.SelectContext(ctx, &sentences, `
		SELECT id, text, batch_id, created_at, labeled
		FROM sentences
		WHERE labeled = 0
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sentences: %w", err)
	}

	return sentences, nil
}

// SaveLabel records a label. With markSentence set, the oldest unlabeled
// sentence with the same text is marked as labeled in the same transaction.
// It reports whether such a sentence was found.
func (r *LabelRepository) SaveLabel(ctx context.Context, label *models.Label, markSentence bool) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	marked := false
	if markSentence {
		result, err := tx.ExecContext(ctx, `
			UPDATE sentences SET labeled = 1
			WHERE id = (
				SELECT id FROM sentences
				WHERE text = ? AND labeled = 0
				ORDER BY id ASC
				LIMIT 1
			)
		`, label.Text)
		if err != nil {
			return false, fmt.Errorf("failed to mark sentence: %w", err)
		}

		n, err := result.RowsAffected()
		if err != nil {
			return false, fmt.Errorf("failed to get rows affected: %w", err)
		}
		marked = n > 0
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO labels (text, category, source, labeled_at) VALUES (?, ?, ?, ?)`,
		label.Text, string(label.Category), string(label.Source), label.LabeledAt.UTC())
	if err != nil {
		return false, fmt.Errorf("failed to save label: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("failed to get last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit label: %w", err)
	}

	label.ID = id
	return marked, nil
}

// GetAllLabels retrieves all labels in the order they were made.
func (r *LabelRepository) GetAllLabels(ctx context.Context) ([]*models.Label, error) {
	var labels []*models.Label
	err := r.db.SelectContext(ctx, &labels, `
		SELECT id, text, category, source, labeled_at
		FROM labels
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query labels: %w", err)
	}

	return labels, nil
}

// GetStats returns label counts per category.
func (r *LabelRepository) GetStats(ctx context.Context) (*models.Stats, error) {
	stats := &models.Stats{ByCategory: make(map[models.LabelCategory]int)}

	if err := r.db.GetContext(ctx, &stats.Total, "SELECT COUNT(*) FROM labels"); err != nil {
		return nil, fmt.Errorf("failed to count labels: %w", err)
	}

	if err := r.db.GetContext(ctx, &stats.Unlabeled, "SELECT COUNT(*) FROM sentences WHERE labeled = 0"); err != nil {
		return nil, fmt.Errorf("failed to count sentences: %w", err)
	}

	rows, err := r.db.QueryxContext(ctx, `
		SELECT category, COUNT(*) AS count
		FROM labels
		GROUP BY category
		ORDER BY category
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			r.logger.Error("Failed to scan stats row", zap.Error(err))
			continue
		}
		stats.ByCategory[models.LabelCategory(category)] = count
	}

	return stats, rows.Err()
}

// Close closes the database connection
func (r *LabelRepository) Close() error {
	return r.db.Close()
}
