package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ParseStructuredOutput decodes a model's JSON answer into out. Models wrap
// JSON in code fences or prose and occasionally emit broken JSON; fences and
// surrounding text are stripped first, then jsonrepair gets a chance before
// giving up.
func ParseStructuredOutput(content string, out any) error {
	candidate := extractJSON(content)
	if candidate == "" {
		return fmt.Errorf("no JSON object found in response")
	}

	if err := json.Unmarshal([]byte(candidate), out); err == nil {
		return nil
	}

	repaired, err := jsonrepair.JSONRepair(candidate)
	if err != nil {
		return fmt.Errorf("repair JSON: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), out); err != nil {
		return fmt.Errorf("decode structured output: %w", err)
	}
	return nil
}

// extractJSON pulls the first top-level JSON object out of a response,
// tolerating markdown fences and explanatory prose around it.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	if idx := strings.Index(content, "```"); idx >= 0 {
		rest := content[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		content = strings.TrimSpace(rest)
	}

	start := strings.Index(content, "{")
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		c := content[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case !inString && c == '{':
			depth++
		case !inString && c == '}':
			depth--
			if depth == 0 {
				return content[start : i+1]
			}
		}
	}
	// Unbalanced braces: return the tail and let jsonrepair close it.
	return content[start:]
}
