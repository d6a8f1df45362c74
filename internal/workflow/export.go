package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"labeling-service/internal/csvcodec"
	"labeling-service/internal/queue"

	"go.uber.org/zap"
)

// Exporter materializes the ledger as labeled_sentences.csv in a directory.
type Exporter struct {
	store  *queue.Store
	dir    string
	logger *zap.Logger
}

// NewExporter creates an exporter writing into dir.
func NewExporter(store *queue.Store, dir string, logger *zap.Logger) *Exporter {
	return &Exporter{
		store:  store,
		dir:    dir,
		logger: logger,
	}
}

// Path is where Export writes.
func (e *Exporter) Path() string {
	return filepath.Join(e.dir, csvcodec.FileName)
}

// Export replaces the export file with the current ledger.
func (e *Exporter) Export(ctx context.Context) (string, error) {
	text, err := e.store.ExportLedger(ctx)
	if err != nil {
		return "", err
	}

	if err := WriteFileAtomic(e.Path(), []byte(text)); err != nil {
		return "", err
	}

	e.logger.Info("Ledger exported", zap.String("path", e.Path()), zap.Int("bytes", len(text)))
	return e.Path(), nil
}

// WriteFileAtomic writes data to a temporary file next to path and renames
// it into place, so a failed write never leaves a partial file behind.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".labeled_sentences-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write export file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move export file into place: %w", err)
	}
	return nil
}

// Run exports on every tick until ctx is done. An empty ledger is skipped silently.
func (e *Exporter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := e.Export(ctx); err != nil && !errors.Is(err, csvcodec.ErrNoRecords) {
				e.logger.Error("Periodic export failed", zap.Error(err))
			}
		}
	}
}
