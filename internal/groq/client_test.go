package groq

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"labeling-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func completion(content string) map[string]any {
	return map[string]any{
		"choices": []any{
			map[string]any{"message": map[string]any{"role": "assistant", "content": content}},
		},
	}
}

func TestSuggest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(completion("```json\n{\"category\":\"hate_speech\",\"justification\":\"slur\"}\n```"))
	}))
	defer srv.Close()

	c, err := NewClient(Config{APIKey: "secret", BaseURL: srv.URL, RetryDelay: time.Millisecond}, zap.NewNop())
	require.NoError(t, err)

	s, err := c.Suggest(context.Background(), "some text")
	require.NoError(t, err)
	assert.Equal(t, models.HateSpeech, s.Category)
	assert.Equal(t, "groq", s.Provider)
	assert.Equal(t, "llama-3.3-70b-versatile", s.Model)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSuggestGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(completion(fmt.Sprintf(`{"category":%q}`, "spam")))
	}))
	defer srv.Close()

	c, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL, MaxRetries: 2, RetryDelay: time.Millisecond}, zap.NewNop())
	require.NoError(t, err)

	_, err = c.Suggest(context.Background(), "x")
	assert.ErrorContains(t, err, "failed after 2 attempts")
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(Config{}, zap.NewNop())
	assert.Error(t, err)
}
