// Package csvcodec renders ordered records as CSV text for export.
//
// The header row is taken from the first record's keys, in order, and is
// written unquoted. Every data field is quoted with internal quotes doubled.
// Rows are separated by "\n" with no trailing newline.
package csvcodec

import (
	"fmt"
	"io"
	"strings"

	"labeling-service/internal/models"
)

// FileName is the name of the exported ledger file.
const FileName = "labeled_sentences.csv"

var (
	// ErrNoRecords is returned when there is nothing to encode.
	ErrNoRecords = fmt.Errorf("%w: no records to export", models.ErrEncoding)
	// ErrHeterogeneous is returned when a record lacks a key present in the header.
	ErrHeterogeneous = fmt.Errorf("%w: records do not share the header keys", models.ErrEncoding)
)

// Field is a single key/value pair of a record.
type Field struct {
	Key   string
	Value any
}

// Record is an ordered set of fields.
type Record []Field

// Keys returns the record's keys in order.
func (r Record) Keys() []string {
	keys := make([]string, len(r))
	for i, f := range r {
		keys[i] = f.Key
	}
	return keys
}

func (r Record) lookup(key string) (any, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Encode renders records as CSV text. Nothing is returned on error.
func Encode(records []Record) (string, error) {
	if len(records) == 0 {
		return "", ErrNoRecords
	}

	headers := records[0].Keys()

	var b strings.Builder
	b.WriteString(strings.Join(headers, ","))

	for i, rec := range records {
		b.WriteByte('\n')
		for j, header := range headers {
			value, ok := rec.lookup(header)
			if !ok || value == nil {
				return "", fmt.Errorf("%w: record %d has no value for %q", ErrHeterogeneous, i, header)
			}
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(quote(fmt.Sprint(value)))
		}
	}

	return b.String(), nil
}

// EncodeTo writes the CSV text to w. The writer is untouched if encoding fails.
func EncodeTo(w io.Writer, records []Record) error {
	text, err := Encode(records)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, text)
	return err
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// FromLedger converts ledger records into sentence,label,timestamp rows.
func FromLedger(ledger []models.LabeledRecord) []Record {
	records := make([]Record, len(ledger))
	for i, r := range ledger {
		records[i] = Record{
			{Key: "sentence", Value: r.Sentence},
			{Key: "label", Value: string(r.Label)},
			{Key: "timestamp", Value: r.Timestamp},
		}
	}
	return records
}
