package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"labeling-service/internal/csvcodec"
	"labeling-service/internal/metrics"
	"labeling-service/internal/models"
	"labeling-service/internal/repository"
	"labeling-service/internal/segmenter"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrSuggestionsDisabled is returned by Suggest when no provider is configured.
var ErrSuggestionsDisabled = errors.New("suggestions are disabled")

// Suggester interface for any LLM provider
type Suggester interface {
	Suggest(ctx context.Context, text string) (*models.Suggestion, error)
	GetModelInfo() map[string]interface{}
}

// LabelingService handles labeling business logic
type LabelingService struct {
	repo      *repository.LabelRepository
	suggester Suggester
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewLabelingService creates a new labeling service. suggester may be nil.
func NewLabelingService(repo *repository.LabelRepository, suggester Suggester, logger *zap.Logger) *LabelingService {
	return &LabelingService{
		repo:      repo,
		suggester: suggester,
		metrics:   metrics.New(),
		logger:    logger,
		now:       time.Now,
	}
}

// NextSentence returns a random unlabeled sentence.
func (s *LabelingService) NextSentence(ctx context.Context) (string, error) {
	sentence, err := s.repo.RandomUnlabeled(ctx)
	if err != nil {
		return "", err
	}
	return sentence.Text, nil
}

// UnlabeledSentences returns the texts of all unlabeled sentences.
func (s *LabelingService) UnlabeledSentences(ctx context.Context) ([]string, error) {
	sentences, err := s.repo.UnlabeledSentences(ctx)
	if err != nil {
		return nil, err
	}

	texts := make([]string, 0, len(sentences))
	for _, sentence := range sentences {
		texts = append(texts, sentence.Text)
	}
	return texts, nil
}

// SubmitParagraph splits a paragraph and stores the sentences as one batch.
func (s *LabelingService) SubmitParagraph(ctx context.Context, paragraph string) (*models.ParagraphResponse, error) {
	if strings.TrimSpace(paragraph) == "" {
		return nil, fmt.Errorf("%w: paragraph is required", models.ErrValidation)
	}

	sentences := segmenter.Segment(paragraph)
	if len(sentences) == 0 {
		return nil, fmt.Errorf("%w: paragraph contains no sentences", models.ErrValidation)
	}

	batchID := uuid.New().String()
	if _, err := s.repo.SaveSentences(ctx, batchID, sentences); err != nil {
		return nil, fmt.Errorf("failed to save sentences: %w", err)
	}

	s.metrics.SentencesIngested.Add(float64(len(sentences)))

	s.logger.Info("Paragraph processed",
		zap.String("batch_id", batchID),
		zap.Int("count", len(sentences)))

	return &models.ParagraphResponse{
		Message:   fmt.Sprintf("Paragraph processed successfully! Created %d sentences.", len(sentences)),
		Count:     len(sentences),
		Sentences: sentences,
		BatchID:   batchID,
	}, nil
}

// Label records a labeling decision. Queue labels also mark the matching
// sentence as labeled.
func (s *LabelingService) Label(ctx context.Context, text string, category models.LabelCategory, source models.LabelSource) (*models.Label, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", models.ErrValidation)
	}
	if !category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", models.ErrValidation, category)
	}

	label := &models.Label{
		Text:      text,
		Category:  category,
		Source:    source,
		LabeledAt: s.now().UTC(),
	}

	marked, err := s.repo.SaveLabel(ctx, label, source == models.SourceQueue)
	if err != nil {
		return nil, fmt.Errorf("failed to save label: %w", err)
	}

	s.metrics.LabelsTotal.WithLabelValues(string(category), string(source)).Inc()

	if source == models.SourceQueue && !marked {
		s.logger.Debug("Labeled text has no pending sentence", zap.String("text", text))
	}

	s.logger.Info("Sentence labeled",
		zap.Int64("id", label.ID),
		zap.String("category", string(category)),
		zap.String("source", string(source)))

	return label, nil
}

// ExportCSV writes every label as labeled_sentences.csv content.
func (s *LabelingService) ExportCSV(ctx context.Context, w io.Writer) error {
	labels, err := s.repo.GetAllLabels(ctx)
	if err != nil {
		return err
	}

	ledger := make([]models.LabeledRecord, 0, len(labels))
	for _, label := range labels {
		ledger = append(ledger, label.Record())
	}

	return csvcodec.EncodeTo(w, csvcodec.FromLedger(ledger))
}

// Stats returns label statistics
func (s *LabelingService) Stats(ctx context.Context) (*models.Stats, error) {
	return s.repo.GetStats(ctx)
}

// Suggest asks the configured providers for an advisory category.
func (s *LabelingService) Suggest(ctx context.Context, text string) (*models.Suggestion, error) {
	if s.suggester == nil {
		s.metrics.SuggestionsTotal.WithLabelValues("disabled").Inc()
		return nil, ErrSuggestionsDisabled
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text is required", models.ErrValidation)
	}

	suggestion, err := s.suggester.Suggest(ctx, text)
	if err != nil {
		s.metrics.SuggestionsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("suggestion failed: %w", err)
	}
	s.metrics.SuggestionsTotal.WithLabelValues("ok").Inc()
	return suggestion, nil
}

// ModelInfo describes the suggestion provider, or nil when disabled.
func (s *LabelingService) ModelInfo() map[string]interface{} {
	if s.suggester == nil {
		return nil
	}
	return s.suggester.GetModelInfo()
}
