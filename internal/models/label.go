package models

import (
	"fmt"
	"strings"
	"time"
)

// LabelCategory is one of the fixed content categories a sentence can be labeled with.
type LabelCategory string

const (
	Normal        LabelCategory = "normal"
	HateSpeech    LabelCategory = "hate_speech"
	Offensive     LabelCategory = "offensive"
	ReligiousHate LabelCategory = "religious_hate"
	PoliticalHate LabelCategory = "political_hate"
)

// Categories lists every category in display order.
var Categories = []LabelCategory{Normal, HateSpeech, Offensive, ReligiousHate, PoliticalHate}

// TimestampLayout is the ISO-8601 layout used for ledger timestamps (UTC, millisecond precision).
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Valid reports whether c is a member of the closed category set.
func (c LabelCategory) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// DisplayName returns the category with its underscore replaced by a space.
func (c LabelCategory) DisplayName() string {
	return strings.Replace(string(c), "_", " ", 1)
}

// ParseCategory converts user input into a LabelCategory.
// Display names ("hate speech") and 1-based indexes into Categories are accepted.
func ParseCategory(s string) (LabelCategory, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return "", fmt.Errorf("%w: no category selected", ErrValidation)
	}

	for i, c := range Categories {
		if s == string(c) || s == c.DisplayName() || s == fmt.Sprintf("%d", i+1) {
			return c, nil
		}
	}

	return "", fmt.Errorf("%w: unknown category %q", ErrValidation, s)
}

// LabeledRecord is one completed labeling decision in the ledger.
// Field order is the CSV column order.
type LabeledRecord struct {
	Sentence  string        `json:"sentence"`
	Label     LabelCategory `json:"label"`
	Timestamp string        `json:"timestamp"`
}

// NewLabeledRecord stamps a labeling decision with the given time.
func NewLabeledRecord(sentence string, label LabelCategory, at time.Time) LabeledRecord {
	return LabeledRecord{
		Sentence:  sentence,
		Label:     label,
		Timestamp: at.UTC().Format(TimestampLayout),
	}
}

// Validate checks the record against the ledger schema.
func (r LabeledRecord) Validate() error {
	if strings.TrimSpace(r.Sentence) == "" {
		return fmt.Errorf("%w: labeled record has empty sentence", ErrValidation)
	}
	if !r.Label.Valid() {
		return fmt.Errorf("%w: labeled record has unknown label %q", ErrValidation, r.Label)
	}
	if _, err := time.Parse(time.RFC3339Nano, r.Timestamp); err != nil {
		return fmt.Errorf("%w: labeled record has invalid timestamp %q", ErrValidation, r.Timestamp)
	}
	return nil
}

// Sentence is a stored sentence awaiting a label on the labeling service.
type Sentence struct {
	ID        int64     `json:"id" db:"id"`
	Text      string    `json:"text" db:"text"`
	BatchID   string    `json:"batch_id" db:"batch_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Labeled   bool      `json:"labeled" db:"labeled"`
}

// LabelSource tells where a labeled text came from.
type LabelSource string

const (
	SourceQueue     LabelSource = "queue"
	SourceUserInput LabelSource = "user_input"
)

// Label is a labeling decision stored by the labeling service.
type Label struct {
	ID        int64         `json:"id" db:"id"`
	Text      string        `json:"text" db:"text"`
	Category  LabelCategory `json:"category" db:"category"`
	Source    LabelSource   `json:"source" db:"source"`
	LabeledAt time.Time     `json:"labeled_at" db:"labeled_at"`
}

// Record converts a stored label into a ledger record.
func (l *Label) Record() LabeledRecord {
	return NewLabeledRecord(l.Text, l.Category, l.LabeledAt)
}
