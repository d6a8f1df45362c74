package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"labeling-service/internal/models"
	"labeling-service/internal/repository"
	"labeling-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSuggester struct{}

func (stubSuggester) Suggest(_ context.Context, _ string) (*models.Suggestion, error) {
	return &models.Suggestion{Category: models.ReligiousHate, Provider: "stub", Model: "stub-1"}, nil
}

func (stubSuggester) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{"provider": "stub"}
}

func newRouter(t *testing.T, suggester service.Suggester) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo, err := repository.NewLabelRepository(filepath.Join(t.TempDir(), "labels.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	svc := service.NewLabelingService(repo, suggester, zap.NewNop())

	r := gin.New()
	r.Use(CORSMiddleware())
	NewHandler(svc, zap.NewNop()).RegisterRoutes(r)
	return r
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestLabelingRoutes(t *testing.T) {
	r := newRouter(t, nil)

	w := serve(r, http.MethodGet, "/api/random-text", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(r, http.MethodPost, "/api/admin/sentences", `{"paragraph":"Is it? Yes!"}`)
	require.Equal(t, http.StatusOK, w.Code)
	para := decode[models.ParagraphResponse](t, w)
	assert.Equal(t, 2, para.Count)
	assert.Equal(t, []string{"Is it?", "Yes!"}, para.Sentences)
	assert.NotEmpty(t, para.BatchID)

	w = serve(r, http.MethodGet, "/api/unlabeled", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Is it?", "Yes!"}, decode[models.UnlabeledSentencesResponse](t, w).Sentences)

	w = serve(r, http.MethodGet, "/api/random-text", "")
	require.Equal(t, http.StatusOK, w.Code)
	text := decode[models.NextSentenceResponse](t, w).Text
	assert.Contains(t, para.Sentences, text)

	w = serve(r, http.MethodPost, "/api/label", `{"text":"Is it?","category":"normal"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[models.LabelResponse](t, w).Success)

	w = serve(r, http.MethodPost, "/api/label-user-input", `{"text":"my own","category":"offensive"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(r, http.MethodGet, "/api/unlabeled", "")
	assert.Equal(t, []string{"Yes!"}, decode[models.UnlabeledSentencesResponse](t, w).Sentences)

	w = serve(r, http.MethodGet, "/api/labels/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[models.Stats](t, w)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Unlabeled)
	assert.Equal(t, 1, stats.ByCategory[models.Offensive])

	w = serve(r, http.MethodGet, "/api/export/csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv;charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "labeled_sentences.csv")
	lines := strings.Split(w.Body.String(), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "sentence,label,timestamp", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], `"Is it?","normal","`))
}

func TestValidationErrors(t *testing.T) {
	r := newRouter(t, nil)

	cases := []struct {
		path string
		body string
	}{
		{"/api/label", `{"text":"","category":"normal"}`},
		{"/api/label", `{"text":"x","category":"spam"}`},
		{"/api/label", `not json`},
		{"/api/label-user-input", `{"text":"   ","category":"normal"}`},
		{"/api/admin/sentences", `{"paragraph":"  "}`},
		{"/api/suggest", `{`},
	}

	for _, tc := range cases {
		w := serve(r, http.MethodPost, tc.path, tc.body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "%s %s", tc.path, tc.body)

		var body struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.False(t, body.Success)
		assert.NotEmpty(t, body.Message)
	}
}

func TestExportEmpty(t *testing.T) {
	w := serve(newRouter(t, nil), http.MethodGet, "/api/export/csv", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSuggestRoute(t *testing.T) {
	w := serve(newRouter(t, nil), http.MethodPost, "/api/suggest", `{"text":"hi"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	r := newRouter(t, stubSuggester{})
	w = serve(r, http.MethodPost, "/api/suggest", `{"text":"hi"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ReligiousHate, decode[models.Suggestion](t, w).Category)

	w = serve(r, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"suggestions"`)
}

func TestCORSPreflight(t *testing.T) {
	w := serve(newRouter(t, nil), http.MethodOptions, "/api/label", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealthCheck(t *testing.T) {
	w := serve(newRouter(t, nil), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode[map[string]any](t, w)["status"])
}
