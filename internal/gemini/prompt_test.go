package gemini

import (
	"testing"

	"labeling-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseSuggestion(t *testing.T) {
	t.Run("plain json", func(t *testing.T) {
		s, err := ParseSuggestion(`{"category":"offensive","justification":"insult"}`)
		require.NoError(t, err)
		assert.Equal(t, models.Offensive, s.Category)
		assert.Equal(t, "insult", s.Justification)
	})

	t.Run("fenced json with odd casing", func(t *testing.T) {
		s, err := ParseSuggestion("```json\n{\"category\": \"Political_Hate\", \"justification\": \"x\"}\n```")
		require.NoError(t, err)
		assert.Equal(t, models.PoliticalHate, s.Category)
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := ParseSuggestion(`{"category":"spam"}`)
		assert.Error(t, err)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := ParseSuggestion("normal")
		assert.Error(t, err)
	})
}

func TestBuildPrompt(t *testing.T) {
	assert.Contains(t, BuildPrompt("hello there"), "hello there")
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(Config{}, zap.NewNop())
	assert.Error(t, err)
}
