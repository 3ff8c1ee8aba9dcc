package generation

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseBackendJSON extracts and unmarshals the first JSON object from a
// model response, tolerating markdown fences and surrounding prose.
func parseBackendJSON[T any](result string, label string) (*T, error) {
	cleaned := extractJSON(result)

	var parsed T
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w\nRaw output:\n%s", label, err, truncateStr(result, 500))
	}

	return &parsed, nil
}

// extractJSON finds and extracts the first JSON object from a string.
// Handles responses that contain thinking text before/after a ```json code block.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)

	// Try to extract content from a markdown code fence first.
	// This handles: text...\n```json\n{...}\n```\nmore text...
	if idx := strings.Index(s, "```"); idx >= 0 {
		fenceStart := idx
		lineEnd := strings.Index(s[fenceStart:], "\n")
		if lineEnd >= 0 {
			contentStart := fenceStart + lineEnd + 1
			closingFence := strings.Index(s[contentStart:], "```")
			if closingFence >= 0 {
				s = s[contentStart : contentStart+closingFence]
			} else {
				s = s[contentStart:]
			}
		}
	}

	// Find the first { and last }
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}

	return s
}

func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
