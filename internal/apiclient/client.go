// Package apiclient talks to the remote labeling service.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"labeling-service/internal/models"

	"go.uber.org/zap"
)

// DefaultTimeout bounds every request when the config leaves it unset.
const DefaultTimeout = 10 * time.Second

const maxResponseSize = 32 << 20

// Config for the labeling service client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// Debug logs every request and response body.
	Debug bool
}

// Client represents the labeling service client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	debug      bool
}

// NewClient creates a new labeling service client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
		debug:  cfg.Debug,
	}
}

// NextSentence fetches a sentence that still needs a label.
// It returns an error wrapping models.ErrNotFound when the service has none left.
func (c *Client) NextSentence(ctx context.Context) (string, error) {
	var resp models.NextSentenceResponse
	if err := c.do(ctx, http.MethodGet, "/api/random-text", nil, &resp); err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Text) == "" {
		return "", fmt.Errorf("%w: labeling service returned no sentence", models.ErrNotFound)
	}
	return resp.Text, nil
}

// UnlabeledSentences lists every sentence still awaiting a label.
func (c *Client) UnlabeledSentences(ctx context.Context) ([]string, error) {
	var resp models.UnlabeledSentencesResponse
	if err := c.do(ctx, http.MethodGet, "/api/unlabeled", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Sentences, nil
}

// SubmitParagraph asks the service to split and store a paragraph.
func (c *Client) SubmitParagraph(ctx context.Context, paragraph string) (*models.ParagraphResponse, error) {
	var resp models.ParagraphResponse
	req := models.ParagraphRequest{Paragraph: paragraph}
	if err := c.do(ctx, http.MethodPost, "/api/admin/sentences", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LabelSentence labels a sentence served by the service.
func (c *Client) LabelSentence(ctx context.Context, text string, category models.LabelCategory) error {
	return c.label(ctx, "/api/label", text, category)
}

// LabelUserInput labels text written by the user.
func (c *Client) LabelUserInput(ctx context.Context, text string, category models.LabelCategory) error {
	return c.label(ctx, "/api/label-user-input", text, category)
}

func (c *Client) label(ctx context.Context, path, text string, category models.LabelCategory) error {
	var resp models.LabelResponse
	req := models.LabelRequest{Text: text, Category: category}
	if err := c.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%w: labeling service rejected label: %s", models.ErrTransport, resp.Message)
	}
	return nil
}

// Suggest asks the service for an advisory category.
func (c *Client) Suggest(ctx context.Context, text string) (*models.Suggestion, error) {
	var resp models.Suggestion
	if err := c.do(ctx, http.MethodPost, "/api/suggest", models.SuggestRequest{Text: text}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Ping checks if the labeling service is available.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// ExportCSV downloads every label stored by the service as CSV text.
func (c *Client) ExportCSV(ctx context.Context) ([]byte, error) {
	return c.send(ctx, http.MethodGet, "/api/export/csv", nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	data, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %w", models.ErrTransport, err)
	}
	return nil
}

// send performs one request and returns the body of a 2xx response.
func (c *Client) send(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", models.ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")

	if c.debug {
		c.logger.Debug("API request", zap.String("method", method), zap.String("url", req.URL.String()), zap.Any("body", body))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("API request failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%w: failed to send request: %w", models.ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", models.ErrTransport, err)
	}

	if c.debug {
		c.logger.Debug("API response", zap.String("path", path), zap.Int("status", resp.StatusCode), zap.ByteString("body", data))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := errorMessage(data)
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %w: %s", models.ErrTransport, models.ErrNotFound, msg)
		}
		return nil, fmt.Errorf("%w: labeling service returned status %d: %s", models.ErrTransport, resp.StatusCode, msg)
	}

	return data, nil
}

// errorMessage pulls a human-readable message out of an error body.
func errorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(data))
}
