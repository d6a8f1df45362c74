package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"labeling-service/internal/models"
)

// SystemInstruction primes the model with the labeling taxonomy.
const SystemInstruction = `You assist human annotators who label short texts for a content moderation dataset.
Classify the text into exactly one of these categories:
- normal: ordinary text with no abusive content
- hate_speech: attacks a person or group based on a protected attribute
- offensive: insulting, vulgar or abusive but not targeting a protected group
- religious_hate: hateful content aimed at a religion or its followers
- political_hate: hateful content aimed at a political group, party or ideology

Answer with a single JSON object and nothing else:
{"category": "<one of the categories above>", "justification": "<one short sentence>"}`

// BuildPrompt wraps the text to classify.
func BuildPrompt(text string) string {
	return fmt.Sprintf("Text to classify:\n\"\"\"\n%s\n\"\"\"", text)
}

// ParseSuggestion decodes a model answer, tolerating markdown code fences.
func ParseSuggestion(raw string) (*models.Suggestion, error) {
	cleanJSON := strings.TrimSpace(raw)
	cleanJSON = strings.TrimPrefix(cleanJSON, "```json")
	cleanJSON = strings.TrimPrefix(cleanJSON, "```")
	cleanJSON = strings.TrimSuffix(cleanJSON, "```")
	cleanJSON = strings.TrimSpace(cleanJSON)

	var result struct {
		Category      string `json:"category"`
		Justification string `json:"justification"`
	}
	if err := json.Unmarshal([]byte(cleanJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse model response: %w", err)
	}

	category := models.LabelCategory(strings.TrimSpace(strings.ToLower(result.Category)))
	if !category.Valid() {
		return nil, fmt.Errorf("invalid category: %q", result.Category)
	}

	return &models.Suggestion{
		Category:      category,
		Justification: result.Justification,
	}, nil
}
