// Package tokenutil counts and bounds prompt tokens with tiktoken-go.
// The cl100k_base encoding is initialized once at startup; when it cannot be
// loaded (offline environments) every function degrades to a character
// heuristic so prompt assembly never fails on token accounting.
package tokenutil

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	once     sync.Once
	encoding *tiktoken.Tiktoken
)

func init() {
	initEncoding()
}

func initEncoding() {
	once.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			encoding = enc
		}
	})
}

// CountTokens returns the cl100k_base token count for text, or EstimateFast
// when the encoding is unavailable.
func CountTokens(text string) int {
	if encoding != nil {
		return len(encoding.Encode(text, nil, nil))
	}
	return EstimateFast(text)
}

// EstimateFast returns a heuristic estimate: max(runes/4, word count).
// Deterministic and allocation-light, for use in tight loops.
func EstimateFast(text string) int {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}
	runes := len([]rune(trimmed))
	words := len(strings.Fields(trimmed))
	estimate := runes / 4
	if estimate < words {
		estimate = words
	}
	if estimate == 0 {
		estimate = 1
	}
	return estimate
}

// TruncateToTokens bounds text to approximately maxTokens, appending an
// ellipsis when anything was cut. maxTokens <= 0 disables truncation.
func TruncateToTokens(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return text
	}
	if encoding != nil {
		tokens := encoding.Encode(text, nil, nil)
		if len(tokens) <= maxTokens {
			return text
		}
		return encoding.Decode(tokens[:maxTokens]) + "..."
	}
	runes := []rune(text)
	limit := maxTokens * 4
	if limit >= len(runes) {
		return text
	}
	return string(runes[:limit]) + "..."
}

// BoundSections truncates each section to its share of budget, preserving
// section order. Sections that fit keep their full text; the remainder of the
// budget is not redistributed. Used to keep peer outputs and mailbox digests
// inside a prompt's context window.
func BoundSections(sections []string, budget int) []string {
	if budget <= 0 || len(sections) == 0 {
		return sections
	}
	share := budget / len(sections)
	if share == 0 {
		share = 1
	}
	bounded := make([]string, len(sections))
	for i, s := range sections {
		bounded[i] = TruncateToTokens(s, share)
	}
	return bounded
}
