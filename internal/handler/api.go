package handler

import (
	"bytes"
	"errors"
	"net/http"

	"labeling-service/internal/csvcodec"
	"labeling-service/internal/models"
	"labeling-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handler handles HTTP requests
type Handler struct {
	labeling *service.LabelingService
	logger   *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(labeling *service.LabelingService, logger *zap.Logger) *Handler {
	return &Handler{
		labeling: labeling,
		logger:   logger,
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		// Labeling
		api.GET("/random-text", h.RandomText)
		api.GET("/unlabeled", h.Unlabeled)
		api.POST("/label", h.Label)
		api.POST("/label-user-input", h.LabelUserInput)

		// Admin
		api.POST("/admin/sentences", h.SubmitParagraph)

		// Data retrieval
		api.GET("/labels/stats", h.GetStats)
		api.GET("/export/csv", h.ExportCSV)

		api.POST("/suggest", h.Suggest)
	}

	// Health check
	r.GET("/health", h.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// CORSMiddleware lets browser front ends call the API from another origin.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RandomText returns one unlabeled sentence
func (h *Handler) RandomText(c *gin.Context) {
	text, err := h.labeling.NextSentence(c.Request.Context())
	if err != nil {
		h.fail(c, "Failed to get sentence", err)
		return
	}

	c.JSON(http.StatusOK, models.NextSentenceResponse{Text: text})
}

// Unlabeled returns all unlabeled sentences
func (h *Handler) Unlabeled(c *gin.Context) {
	sentences, err := h.labeling.UnlabeledSentences(c.Request.Context())
	if err != nil {
		h.fail(c, "Failed to get sentences", err)
		return
	}

	c.JSON(http.StatusOK, models.UnlabeledSentencesResponse{Sentences: sentences})
}

// SubmitParagraph splits a paragraph into sentences and stores them
func (h *Handler) SubmitParagraph(c *gin.Context) {
	var req models.ParagraphRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	resp, err := h.labeling.SubmitParagraph(c.Request.Context(), req.Paragraph)
	if err != nil {
		h.fail(c, "Failed to process paragraph", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Label labels a sentence served by RandomText
func (h *Handler) Label(c *gin.Context) {
	h.label(c, models.SourceQueue)
}

// LabelUserInput labels text typed in by the user
func (h *Handler) LabelUserInput(c *gin.Context) {
	h.label(c, models.SourceUserInput)
}

func (h *Handler) label(c *gin.Context, source models.LabelSource) {
	var req models.LabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.LabelResponse{Success: false, Message: err.Error()})
		return
	}

	if _, err := h.labeling.Label(c.Request.Context(), req.Text, req.Category, source); err != nil {
		h.fail(c, "Failed to save label", err)
		return
	}

	c.JSON(http.StatusOK, models.LabelResponse{Success: true, Message: "Label saved"})
}

// GetStats returns label statistics
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.labeling.Stats(c.Request.Context())
	if err != nil {
		h.fail(c, "Failed to get stats", err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportCSV exports labels as labeled_sentences.csv
func (h *Handler) ExportCSV(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.labeling.ExportCSV(c.Request.Context(), &buf); err != nil {
		if errors.Is(err, csvcodec.ErrNoRecords) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "no labeled sentences to export"})
			return
		}
		h.fail(c, "Failed to export CSV", err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+csvcodec.FileName)
	c.Data(http.StatusOK, "text/csv;charset=utf-8", buf.Bytes())
}

// Suggest returns an advisory category for a text
func (h *Handler) Suggest(c *gin.Context) {
	var req models.SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	suggestion, err := h.labeling.Suggest(c.Request.Context(), req.Text)
	if err != nil {
		h.fail(c, "Failed to suggest category", err)
		return
	}

	c.JSON(http.StatusOK, suggestion)
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(c *gin.Context) {
	resp := gin.H{
		"status":  "healthy",
		"service": "labeling-service",
		"version": "1.0.0",
	}
	if info := h.labeling.ModelInfo(); info != nil {
		resp["suggestions"] = info
	}

	c.JSON(http.StatusOK, resp)
}

// fail writes an error response. Server-side errors are logged and their
// details kept out of the body.
func (h *Handler) fail(c *gin.Context, msg string, err error) {
	status := models.MapHTTPStatus(err)
	if errors.Is(err, service.ErrSuggestionsDisabled) {
		status = http.StatusServiceUnavailable
	}

	message := err.Error()
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		h.logger.Error(msg, zap.Error(err))
		message = msg
	}

	c.JSON(status, gin.H{"success": false, "message": message})
}
