// Package queue persists the pending sentence queue and the labeled ledger.
//
// Both collections are stored as JSON documents under fixed keys of a
// kvstore.Store. The store is single-writer: concurrent sessions mutating the
// same keys are not coordinated.
package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"labeling-service/internal/csvcodec"
	"labeling-service/internal/kvstore"
	"labeling-service/internal/models"

	"go.uber.org/zap"
)

// Keys of the persisted collections.
const (
	PendingKey = "unlabeledSentences"
	LedgerKey  = "labeledSentences"
)

// Store manages the pending queue and the ledger.
type Store struct {
	kv     kvstore.Store
	logger *zap.Logger
}

// New wraps a key-value store.
func New(kv kvstore.Store, logger *zap.Logger) *Store {
	return &Store{
		kv:     kv,
		logger: logger,
	}
}

// Pending returns the queued sentences, oldest first.
func (s *Store) Pending(ctx context.Context) ([]string, error) {
	raw, found, err := s.kv.Get(ctx, PendingKey)
	if err != nil {
		return nil, err
	}
	if !found {
		return []string{}, nil
	}
	return decodePending(raw)
}

// Ledger returns every labeled record in creation order.
func (s *Store) Ledger(ctx context.Context) ([]models.LabeledRecord, error) {
	raw, found, err := s.kv.Get(ctx, LedgerKey)
	if err != nil {
		return nil, err
	}
	if !found {
		return []models.LabeledRecord{}, nil
	}
	return decodeLedger(raw)
}

// Enqueue appends sentences to the end of the queue, preserving their order.
// Duplicates are allowed.
func (s *Store) Enqueue(ctx context.Context, sentences []string) error {
	for i, sentence := range sentences {
		if strings.TrimSpace(sentence) == "" {
			return fmt.Errorf("%w: sentence %d is empty", models.ErrValidation, i)
		}
	}

	pending, err := s.Pending(ctx)
	if err != nil {
		return err
	}

	pending = append(pending, sentences...)
	if err := s.write(ctx, PendingKey, pending); err != nil {
		return err
	}

	s.logger.Debug("Sentences enqueued",
		zap.Int("added", len(sentences)),
		zap.Int("pending", len(pending)))

	return nil
}

// DequeueFront returns the oldest pending sentence without removing it.
// ok is false when the queue is empty.
func (s *Store) DequeueFront(ctx context.Context) (sentence string, ok bool, err error) {
	pending, err := s.Pending(ctx)
	if err != nil {
		return "", false, err
	}
	if len(pending) == 0 {
		return "", false, nil
	}
	return pending[0], true, nil
}

// RemoveFromFront removes the first occurrence of sentence from the queue.
// Removing a sentence that is not queued is a no-op.
func (s *Store) RemoveFromFront(ctx context.Context, sentence string) error {
	pending, err := s.Pending(ctx)
	if err != nil {
		return err
	}

	updated, removed := removeFirst(pending, sentence)
	if !removed {
		s.logger.Debug("Sentence not queued, nothing removed", zap.String("sentence", sentence))
		return nil
	}

	return s.write(ctx, PendingKey, updated)
}

// AppendLabeled adds a record to the end of the ledger.
func (s *Store) AppendLabeled(ctx context.Context, record models.LabeledRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	ledger, err := s.Ledger(ctx)
	if err != nil {
		return err
	}

	return s.write(ctx, LedgerKey, append(ledger, record))
}

// CommitLabel appends record to the ledger and removes the first queued
// occurrence of its sentence in a single atomic write.
func (s *Store) CommitLabel(ctx context.Context, record models.LabeledRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	pending, err := s.Pending(ctx)
	if err != nil {
		return err
	}
	ledger, err := s.Ledger(ctx)
	if err != nil {
		return err
	}

	pending, _ = removeFirst(pending, record.Sentence)
	ledger = append(ledger, record)

	pendingJSON, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("failed to encode pending queue: %w", err)
	}
	ledgerJSON, err := json.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}

	if err := s.kv.SetMany(ctx, map[string][]byte{
		PendingKey: pendingJSON,
		LedgerKey:  ledgerJSON,
	}); err != nil {
		return err
	}

	s.logger.Info("Sentence labeled",
		zap.String("label", string(record.Label)),
		zap.Int("pending", len(pending)),
		zap.Int("labeled", len(ledger)))

	return nil
}

// ExportLedger renders the ledger as CSV. The ledger is not modified.
func (s *Store) ExportLedger(ctx context.Context) (string, error) {
	ledger, err := s.Ledger(ctx)
	if err != nil {
		return "", err
	}
	return csvcodec.Encode(csvcodec.FromLedger(ledger))
}

func (s *Store) write(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.kv.Set(ctx, key, data)
}

func removeFirst(sentences []string, sentence string) ([]string, bool) {
	for i, s := range sentences {
		if s == sentence {
			out := make([]string, 0, len(sentences)-1)
			out = append(out, sentences[:i]...)
			return append(out, sentences[i+1:]...), true
		}
	}
	return sentences, false
}

func decodePending(raw []byte) ([]string, error) {
	var pending []string
	if err := json.Unmarshal(raw, &pending); err != nil {
		return nil, fmt.Errorf("%w: stored %s is not a list of strings: %w", models.ErrValidation, PendingKey, err)
	}
	for i, s := range pending {
		if strings.TrimSpace(s) == "" {
			return nil, fmt.Errorf("%w: stored %s has an empty sentence at %d", models.ErrValidation, PendingKey, i)
		}
	}
	if pending == nil {
		pending = []string{}
	}
	return pending, nil
}

func decodeLedger(raw []byte) ([]models.LabeledRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var ledger []models.LabeledRecord
	if err := dec.Decode(&ledger); err != nil {
		return nil, fmt.Errorf("%w: stored %s has an unexpected shape: %w", models.ErrValidation, LedgerKey, err)
	}
	for i, r := range ledger {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("stored %s record %d: %w", LedgerKey, i, err)
		}
	}
	if ledger == nil {
		ledger = []models.LabeledRecord{}
	}
	return ledger, nil
}
