package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"labeling-service/internal/kvstore"
	"labeling-service/internal/llm"
	"labeling-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeFile(t, "server: {}\n"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "./data/labels.db", cfg.Database.Path)
	assert.Equal(t, 3, cfg.MaxFailuresBeforeSwitch)
	assert.Empty(t, cfg.SuggestionProviders())
}

func TestLoadConfigProviders(t *testing.T) {
	t.Setenv("TEST_GROQ_KEY", "from-env")

	cfg, err := LoadConfig(writeFile(t, `
server:
  port: "9000"
providers:
  - type: groq
    api_key: ${TEST_GROQ_KEY}
    retry_delay: 500ms
    requests_per_minute: 20
  - type: gemini
    api_key: ""
max_failures_before_switch: 5
`))
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, 5, cfg.MaxFailuresBeforeSwitch)

	providers := cfg.SuggestionProviders()
	require.Len(t, providers, 1)
	assert.Equal(t, llm.ProviderGroq, providers[0].Type)
	assert.Equal(t, "from-env", providers[0].APIKey)
	assert.Equal(t, 500*time.Millisecond, providers[0].RetryDelay)
	assert.Equal(t, 20, providers[0].RequestsPerMinute)
}

func TestGeminiShorthand(t *testing.T) {
	cfg, err := LoadConfig(writeFile(t, "gemini:\n  api_key: abc\n  model_name: gemini-pro\n"))
	require.NoError(t, err)

	providers := cfg.SuggestionProviders()
	require.Len(t, providers, 1)
	assert.Equal(t, llm.ProviderGemini, providers[0].Type)
	assert.Equal(t, "gemini-pro", providers[0].ModelName)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestLoadLabelerConfigDefaults(t *testing.T) {
	cfg, err := LoadLabelerConfig(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.False(t, cfg.API.Debug)
	assert.Equal(t, kvstore.TypeSQLite, cfg.Storage.Type)
	assert.Equal(t, "./data/queue.db", cfg.Storage.Path)
	assert.Equal(t, ".", cfg.Export.Dir)
	assert.Equal(t, SourceLocal, cfg.Source)
}

func TestLoadLabelerConfigFile(t *testing.T) {
	cfg, err := LoadLabelerConfig(writeFile(t, `
api:
  base_url: http://labels.internal:8080
  timeout: 3s
storage:
  type: memory
export:
  dir: ./out
  auto: true
source: Remote
forward: true
`))
	require.NoError(t, err)

	assert.Equal(t, "http://labels.internal:8080", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, kvstore.TypeMemory, cfg.Storage.Type)
	assert.Empty(t, cfg.Storage.Path)
	assert.True(t, cfg.Export.Auto)
	assert.Equal(t, SourceRemote, cfg.Source)
	assert.True(t, cfg.Forward)

	api := cfg.APIClient()
	assert.Equal(t, cfg.API.BaseURL, api.BaseURL)
	assert.Equal(t, 3*time.Second, api.Timeout)
}

func TestLabelerEnvOverrides(t *testing.T) {
	t.Setenv(EnvAPIURL, "http://env:1234")
	t.Setenv(EnvAPITimeoutMS, "2500")
	t.Setenv(EnvDebug, "true")

	cfg, err := LoadLabelerConfig(writeFile(t, "api:\n  base_url: http://file:1\n  timeout: 1s\n"))
	require.NoError(t, err)

	assert.Equal(t, "http://env:1234", cfg.API.BaseURL)
	assert.Equal(t, 2500*time.Millisecond, cfg.API.Timeout)
	assert.True(t, cfg.API.Debug)
}

func TestLabelerConfigErrors(t *testing.T) {
	t.Run("bad timeout", func(t *testing.T) {
		t.Setenv(EnvAPITimeoutMS, "soon")
		_, err := LoadLabelerConfig("")
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("bad debug", func(t *testing.T) {
		t.Setenv(EnvDebug, "maybe")
		_, err := LoadLabelerConfig("")
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("bad source", func(t *testing.T) {
		_, err := LoadLabelerConfig(writeFile(t, "source: cloud\n"))
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := LoadLabelerConfig(writeFile(t, "api: [\n"))
		assert.Error(t, err)
	})
}
