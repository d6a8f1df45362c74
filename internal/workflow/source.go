package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"labeling-service/internal/models"
	"labeling-service/internal/queue"
	"labeling-service/internal/segmenter"
)

// Source supplies work items and records labeling decisions.
type Source interface {
	// Next returns the next sentence to label, or ErrNoWork.
	Next(ctx context.Context) (string, error)
	// Label records a decision for a sentence obtained from Next.
	Label(ctx context.Context, text string, category models.LabelCategory) error
	// LabelUserInput records a decision for user-authored text.
	LabelUserInput(ctx context.Context, text string, category models.LabelCategory) error
	// Discard drops a sentence without labeling it.
	Discard(ctx context.Context, text string) error
	// SubmitParagraph splits a paragraph into queued sentences.
	SubmitParagraph(ctx context.Context, paragraph string) ([]string, error)
}

// Service is the subset of the labeling service client used by sources.
type Service interface {
	NextSentence(ctx context.Context) (string, error)
	LabelSentence(ctx context.Context, text string, category models.LabelCategory) error
	LabelUserInput(ctx context.Context, text string, category models.LabelCategory) error
	SubmitParagraph(ctx context.Context, paragraph string) (*models.ParagraphResponse, error)
}

// RemoteSource serves sentences from the labeling service and sends decisions back to it.
type RemoteSource struct {
	svc Service
}

// NewRemoteSource creates a source backed by the labeling service.
func NewRemoteSource(svc Service) *RemoteSource {
	return &RemoteSource{svc: svc}
}

func (s *RemoteSource) Next(ctx context.Context) (string, error) {
	text, err := s.svc.NextSentence(ctx)
	if errors.Is(err, models.ErrNotFound) {
		return "", fmt.Errorf("%w: %w", ErrNoWork, err)
	}
	return text, err
}

func (s *RemoteSource) Label(ctx context.Context, text string, category models.LabelCategory) error {
	return s.svc.LabelSentence(ctx, text, category)
}

func (s *RemoteSource) LabelUserInput(ctx context.Context, text string, category models.LabelCategory) error {
	return s.svc.LabelUserInput(ctx, text, category)
}

// Discard is a no-op: the service keeps unlabeled sentences until someone labels them.
func (s *RemoteSource) Discard(context.Context, string) error {
	return nil
}

func (s *RemoteSource) SubmitParagraph(ctx context.Context, paragraph string) ([]string, error) {
	resp, err := s.svc.SubmitParagraph(ctx, paragraph)
	if err != nil {
		return nil, err
	}
	return resp.Sentences, nil
}

// LocalSource serves sentences from the local queue and records decisions in
// the local ledger. When Forward is set every decision is sent to the
// labeling service first, and the local store is only touched once the
// service accepted it.
type LocalSource struct {
	store   *queue.Store
	forward Service
	now     func() time.Time
}

// NewLocalSource creates a source backed by the local queue store.
// forward may be nil.
func NewLocalSource(store *queue.Store, forward Service) *LocalSource {
	return &LocalSource{
		store:   store,
		forward: forward,
		now:     time.Now,
	}
}

func (s *LocalSource) Next(ctx context.Context) (string, error) {
	text, ok, err := s.store.DequeueFront(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNoWork
	}
	return text, nil
}

func (s *LocalSource) Label(ctx context.Context, text string, category models.LabelCategory) error {
	if s.forward != nil {
		if err := s.forward.LabelSentence(ctx, text, category); err != nil {
			return err
		}
	}
	return s.store.CommitLabel(ctx, models.NewLabeledRecord(text, category, s.now()))
}

func (s *LocalSource) LabelUserInput(ctx context.Context, text string, category models.LabelCategory) error {
	if s.forward != nil {
		if err := s.forward.LabelUserInput(ctx, text, category); err != nil {
			return err
		}
	}
	return s.store.AppendLabeled(ctx, models.NewLabeledRecord(text, category, s.now()))
}

func (s *LocalSource) Discard(ctx context.Context, text string) error {
	return s.store.RemoveFromFront(ctx, text)
}

func (s *LocalSource) SubmitParagraph(ctx context.Context, paragraph string) ([]string, error) {
	sentences := segmenter.Segment(paragraph)
	if len(sentences) == 0 {
		return nil, fmt.Errorf("%w: paragraph contains no sentences", models.ErrValidation)
	}
	if err := s.store.Enqueue(ctx, sentences); err != nil {
		return nil, err
	}
	return sentences, nil
}
