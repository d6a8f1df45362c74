package kvstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"labeling-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, found, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "a", []byte(`["x"]`)))
	v, found, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `["x"]`, string(v))

	require.NoError(t, s.Set(ctx, "a", []byte(`[]`)))
	v, _, err = s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(v))

	require.NoError(t, s.SetMany(ctx, map[string][]byte{
		"a": []byte("1"),
		"b": []byte("2"),
	}))
	v, _, err = s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", string(v))
	v, _, err = s.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "2", string(v))
}

func TestMemory(t *testing.T) {
	s := NewMemory()
	defer s.Close()
	exerciseStore(t, s)

	t.Run("values are copied", func(t *testing.T) {
		buf := []byte("abc")
		require.NoError(t, s.Set(context.Background(), "k", buf))
		buf[0] = 'z'
		v, _, err := s.Get(context.Background(), "k")
		require.NoError(t, err)
		assert.Equal(t, "abc", string(v))
	})
}

func TestSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "queue.db")

	s, err := NewSQLite(path, zap.NewNop())
	require.NoError(t, err)
	exerciseStore(t, s)
	require.NoError(t, s.Close())

	t.Run("data survives reopen", func(t *testing.T) {
		reopened, err := NewSQLite(path, zap.NewNop())
		require.NoError(t, err)
		defer reopened.Close()

		v, found, err := reopened.Get(context.Background(), "b")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "2", string(v))
	})

	t.Run("ignores canceled context", func(t *testing.T) {
		reopened, err := NewSQLite(path, zap.NewNop())
		require.NoError(t, err)
		defer reopened.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.NoError(t, reopened.Set(ctx, "c", []byte("3")))
	})

	t.Run("closed store reports persistence error", func(t *testing.T) {
		closed, err := NewSQLite(path, zap.NewNop())
		require.NoError(t, err)
		require.NoError(t, closed.Close())

		_, _, err = closed.Get(context.Background(), "a")
		assert.ErrorIs(t, err, models.ErrPersistence)
	})
}

func TestPostgres(t *testing.T) {
	url := os.Getenv("LABELER_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("LABELER_TEST_POSTGRES_URL not set")
	}

	s, err := NewPostgres(url, zap.NewNop())
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

func TestOpen(t *testing.T) {
	s, err := Open(Config{Type: TypeMemory}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	s, err = Open(Config{Type: TypeSQLite, Path: filepath.Join(t.TempDir(), "kv.db")}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(Config{Type: "redis"}, zap.NewNop())
	assert.ErrorIs(t, err, models.ErrPersistence)

	_, err = Open(Config{Type: TypeSQLite}, zap.NewNop())
	assert.ErrorIs(t, err, models.ErrPersistence)
}
