// Package workflow drives the labeling loop: fetch a sentence, record a
// decision or skip it, fetch the next one, and export the ledger.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"labeling-service/internal/models"

	"go.uber.org/zap"
)

// Advance reports what happened after a decision was recorded.
// The decision itself succeeded; FetchErr and ExportErr describe the follow-up steps.
type Advance struct {
	Next       string
	FetchErr   error
	ExportPath string
	ExportErr  error
}

// Controller runs the labeling state machine over a Source.
//
// Served sentences, user-authored text and paragraph submissions each have
// their own slot; actions on different slots may run concurrently, actions on
// the same slot may not.
type Controller struct {
	source     Source
	exporter   *Exporter
	autoExport bool
	logger     *zap.Logger

	review slot
	input  slot
	admin  slot
}

// Option configures a Controller.
type Option func(*Controller)

// WithExporter enables Export.
func WithExporter(e *Exporter) Option {
	return func(c *Controller) {
		c.exporter = e
	}
}

// WithAutoExport rewrites the export file after every recorded decision.
func WithAutoExport(enabled bool) Option {
	return func(c *Controller) {
		c.autoExport = enabled
	}
}

// NewController creates a controller in the Idle state.
func NewController(source Source, logger *zap.Logger, opts ...Option) *Controller {
	c := &Controller{
		source: source,
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the state of the served-sentence slot.
func (c *Controller) State() State {
	state, _ := c.review.snapshot()
	return state
}

// Current returns the work item, if one is ready.
func (c *Controller) Current() (string, bool) {
	state, text := c.review.snapshot()
	return text, state == Ready
}

// Next fetches a work item. On failure the slot returns to Idle.
func (c *Controller) Next(ctx context.Context) (string, error) {
	if _, _, err := c.review.enter(Fetching); err != nil {
		return "", err
	}
	return c.fetch(ctx)
}

func (c *Controller) fetch(ctx context.Context) (string, error) {
	text, err := c.source.Next(ctx)
	if err != nil {
		c.review.settle(Idle, "")
		if !errors.Is(err, ErrNoWork) {
			c.logger.Warn("Failed to fetch next sentence", zap.Error(err))
		}
		return "", err
	}

	c.review.settle(Ready, text)
	c.logger.Debug("Work item ready", zap.String("text", text))
	return text, nil
}

// Label records category for the current work item and fetches the next one.
// If recording fails the work item stays Ready and nothing is mutated.
func (c *Controller) Label(ctx context.Context, category models.LabelCategory) (Advance, error) {
	if err := validateCategory(category); err != nil {
		return Advance{}, err
	}

	from, text, err := c.review.enter(Submitting)
	if err != nil {
		return Advance{}, err
	}
	if from != Ready || strings.TrimSpace(text) == "" {
		c.review.settle(from, text)
		return Advance{}, fmt.Errorf("%w: no sentence to label", models.ErrValidation)
	}

	if err := c.source.Label(ctx, text, category); err != nil {
		c.review.settle(Ready, text)
		c.logger.Warn("Failed to label sentence", zap.String("category", string(category)), zap.Error(err))
		return Advance{}, fmt.Errorf("failed to label sentence: %w", err)
	}

	c.logger.Info("Sentence labeled", zap.String("category", string(category)))

	c.review.settle(Fetching, "")
	var adv Advance
	adv.ExportPath, adv.ExportErr = c.maybeExport(ctx)
	adv.Next, adv.FetchErr = c.fetch(ctx)
	return adv, nil
}

// Skip discards the current work item without labeling it and fetches the next one.
func (c *Controller) Skip(ctx context.Context) (Advance, error) {
	from, text, err := c.review.enter(Submitting)
	if err != nil {
		return Advance{}, err
	}

	if from == Ready {
		if err := c.source.Discard(ctx, text); err != nil {
			c.review.settle(Ready, text)
			return Advance{}, fmt.Errorf("failed to skip sentence: %w", err)
		}
		c.logger.Debug("Sentence skipped", zap.String("text", text))
	}

	c.review.settle(Fetching, "")
	var adv Advance
	adv.Next, adv.FetchErr = c.fetch(ctx)
	return adv, nil
}

// SubmitUserInput labels text written by the user.
func (c *Controller) SubmitUserInput(ctx context.Context, text string, category models.LabelCategory) (Advance, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Advance{}, fmt.Errorf("%w: please enter some text to label", models.ErrValidation)
	}
	if err := validateCategory(category); err != nil {
		return Advance{}, err
	}

	if _, _, err := c.input.enter(Submitting); err != nil {
		return Advance{}, err
	}
	defer c.input.settle(Idle, "")

	if err := c.source.LabelUserInput(ctx, text, category); err != nil {
		c.logger.Warn("Failed to label user input", zap.Error(err))
		return Advance{}, fmt.Errorf("failed to label user input: %w", err)
	}

	c.logger.Info("User input labeled", zap.String("category", string(category)))

	var adv Advance
	adv.ExportPath, adv.ExportErr = c.maybeExport(ctx)
	return adv, nil
}

// SubmitParagraph splits a paragraph into sentences and queues them.
func (c *Controller) SubmitParagraph(ctx context.Context, paragraph string) ([]string, error) {
	if strings.TrimSpace(paragraph) == "" {
		return nil, fmt.Errorf("%w: please enter some text before submitting", models.ErrValidation)
	}

	if _, _, err := c.admin.enter(Submitting); err != nil {
		return nil, err
	}
	defer c.admin.settle(Idle, "")

	sentences, err := c.source.SubmitParagraph(ctx, paragraph)
	if err != nil {
		c.logger.Warn("Failed to submit paragraph", zap.Error(err))
		return nil, fmt.Errorf("failed to submit paragraph: %w", err)
	}

	c.logger.Info("Paragraph submitted", zap.Int("sentences", len(sentences)))
	return sentences, nil
}

// Export writes the ledger to the export file and returns its path.
func (c *Controller) Export(ctx context.Context) (string, error) {
	if c.exporter == nil {
		return "", errors.New("export is not configured")
	}
	return c.exporter.Export(ctx)
}

func (c *Controller) maybeExport(ctx context.Context) (string, error) {
	if !c.autoExport || c.exporter == nil {
		return "", nil
	}
	path, err := c.exporter.Export(ctx)
	if err != nil {
		c.logger.Warn("Automatic export failed", zap.Error(err))
	}
	return path, err
}

func validateCategory(category models.LabelCategory) error {
	if category == "" {
		return fmt.Errorf("%w: no category selected", models.ErrValidation)
	}
	if !category.Valid() {
		return fmt.Errorf("%w: unknown category %q", models.ErrValidation, category)
	}
	return nil
}
