package models

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want LabelCategory
	}{
		{"normal", Normal},
		{"hate_speech", HateSpeech},
		{"Hate Speech", HateSpeech},
		{" religious hate ", ReligiousHate},
		{"5", PoliticalHate},
		{"3", Offensive},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCategory(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("empty is rejected", func(t *testing.T) {
		_, err := ParseCategory("  ")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown is rejected", func(t *testing.T) {
		_, err := ParseCategory("spam")
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestLabeledRecord(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 30, 0, 123000000, time.FixedZone("UTC+2", 2*3600))
	rec := NewLabeledRecord("A.", Normal, at)

	assert.Equal(t, "2024-03-01T08:30:00.123Z", rec.Timestamp)
	assert.NoError(t, rec.Validate())

	bad := rec
	bad.Label = "spam"
	assert.ErrorIs(t, bad.Validate(), ErrValidation)

	bad = rec
	bad.Sentence = " "
	assert.ErrorIs(t, bad.Validate(), ErrValidation)

	bad = rec
	bad.Timestamp = "yesterday"
	assert.ErrorIs(t, bad.Validate(), ErrValidation)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "religious hate", ReligiousHate.DisplayName())
	assert.Equal(t, "normal", Normal.DisplayName())
}

func TestMapHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, MapHTTPStatus(ErrValidation))
	assert.Equal(t, http.StatusNotFound, MapHTTPStatus(ErrNotFound))
	assert.Equal(t, http.StatusInternalServerError, MapHTTPStatus(errors.New("boom")))
}
