package workflow

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"labeling-service/internal/csvcodec"
	"labeling-service/internal/kvstore"
	"labeling-service/internal/models"
	"labeling-service/internal/queue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExporter(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "exports")
	store := queue.New(kvstore.NewMemory(), zap.NewNop())
	e := NewExporter(store, dir, zap.NewNop())

	t.Run("empty ledger produces no file", func(t *testing.T) {
		_, err := e.Export(ctx)
		assert.ErrorIs(t, err, csvcodec.ErrNoRecords)
		assert.ErrorIs(t, err, models.ErrEncoding)

		_, statErr := os.Stat(e.Path())
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("writes and overwrites", func(t *testing.T) {
		at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, store.AppendLabeled(ctx, models.NewLabeledRecord("A.", models.Normal, at)))

		path, err := e.Export(ctx)
		require.NoError(t, err)
		first, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "sentence,label,timestamp\n\"A.\",\"normal\",\"2024-01-01T00:00:00.000Z\"", string(first))

		_, err = e.Export(ctx)
		require.NoError(t, err)
		second, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, first, second)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1, "temporary files are cleaned up")
	})
}

func TestExporterRun(t *testing.T) {
	dir := t.TempDir()
	store := queue.New(kvstore.NewMemory(), zap.NewNop())
	require.NoError(t, store.AppendLabeled(context.Background(),
		models.NewLabeledRecord("A.", models.Normal, time.Now())))

	e := NewExporter(store, dir, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		_, err := os.Stat(e.Path())
		return err == nil
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}
