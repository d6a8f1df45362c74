package models

// NextSentenceResponse is returned by GET /api/random-text.
type NextSentenceResponse struct {
	Text string `json:"text"`
}

// UnlabeledSentencesResponse is returned by GET /api/unlabeled.
type UnlabeledSentencesResponse struct {
	Sentences []string `json:"sentences"`
}

// ParagraphRequest is the body of POST /api/admin/sentences.
type ParagraphRequest struct {
	Paragraph string `json:"paragraph"`
}

// ParagraphResponse reports how a paragraph was split.
type ParagraphResponse struct {
	Message   string   `json:"message"`
	Count     int      `json:"count"`
	Sentences []string `json:"sentences"`
	BatchID   string   `json:"batch_id,omitempty"`
}

// LabelRequest is the body of POST /api/label and POST /api/label-user-input.
type LabelRequest struct {
	Text     string        `json:"text"`
	Category LabelCategory `json:"category"`
}

// LabelResponse acknowledges a label submission.
type LabelResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// SuggestRequest is the body of POST /api/suggest.
type SuggestRequest struct {
	Text string `json:"text"`
}

// Suggestion is an advisory category produced by an LLM provider.
type Suggestion struct {
	Category      LabelCategory `json:"category"`
	Justification string        `json:"justification"`
	Provider      string        `json:"provider"`
	Model         string        `json:"model"`
}

// Stats summarizes stored labels.
type Stats struct {
	Total      int                   `json:"total"`
	Unlabeled  int                   `json:"unlabeled"`
	ByCategory map[LabelCategory]int `json:"by_category"`
}
