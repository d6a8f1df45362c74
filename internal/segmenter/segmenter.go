// Package segmenter splits free text into labelable sentences.
package segmenter

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Segment splits a paragraph after every '.', '!' or '?' that is followed by
// whitespace or the end of input. The terminator stays with its sentence,
// fragments are trimmed and empty fragments are dropped.
//
// Abbreviations and decimals are not special-cased: "Mr. Smith" yields two sentences.
func Segment(paragraph string) []string {
	sentences := make([]string, 0)
	start := 0

	for i := 0; i < len(paragraph); {
		r, size := utf8.DecodeRuneInString(paragraph[i:])
		i += size
		if !isTerminator(r) {
			continue
		}
		if i < len(paragraph) {
			next, _ := utf8.DecodeRuneInString(paragraph[i:])
			if !unicode.IsSpace(next) {
				continue
			}
		}
		sentences = appendTrimmed(sentences, paragraph[start:i])
		start = i
	}

	return appendTrimmed(sentences, paragraph[start:])
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func appendTrimmed(sentences []string, fragment string) []string {
	if s := strings.TrimSpace(fragment); s != "" {
		return append(sentences, s)
	}
	return sentences
}
