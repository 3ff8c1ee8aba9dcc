package spec

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseLevelLiteral extracts the level list from generated game source.
//
// Generated logic code declares its levels as a JSON array literal assigned
// to a `levels` identifier. The literal is decoded with a strict schema:
// unknown fields, non-array payloads, and out-of-range values are all
// rejected. Generated source is untrusted input — nothing here evaluates
// code, and a malformed literal is an error rather than an empty list, so
// generation defects surface instead of being masked.
func ParseLevelLiteral(source string) ([]LevelDef, error) {
	literal, err := extractLevelArray(source)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(strings.NewReader(literal))
	dec.DisallowUnknownFields()

	var levels []LevelDef
	if err := dec.Decode(&levels); err != nil {
		return nil, fmt.Errorf("level literal does not conform to schema: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("level literal has trailing content after the array")
	}
	if len(levels) == 0 {
		return nil, fmt.Errorf("level literal is empty")
	}
	for i, lvl := range levels {
		if lvl.Index != i+1 {
			return nil, fmt.Errorf("level %d has index %d, want %d", i, lvl.Index, i+1)
		}
		if strings.TrimSpace(lvl.Name) == "" {
			return nil, fmt.Errorf("level %d has no name", lvl.Index)
		}
		if lvl.Difficulty < 1 || lvl.Difficulty > 10 {
			return nil, fmt.Errorf("level %d difficulty %d out of range [1,10]", lvl.Index, lvl.Difficulty)
		}
	}
	return levels, nil
}

// extractLevelArray locates the `levels = [...]` assignment and returns the
// balanced bracket span. Bracket matching is string-aware so a "]" inside a
// level name does not truncate the literal.
func extractLevelArray(source string) (string, error) {
	idx := levelAssignmentIndex(source)
	if idx < 0 {
		return "", fmt.Errorf("no levels declaration found in source")
	}

	open := strings.Index(source[idx:], "[")
	if open < 0 {
		return "", fmt.Errorf("levels declaration has no array literal")
	}
	start := idx + open

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(source); i++ {
		ch := source[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return source[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("levels array literal is not terminated")
}

func levelAssignmentIndex(source string) int {
	for _, marker := range []string{"let levels", "var levels", "levels ="} {
		if idx := strings.Index(source, marker); idx >= 0 {
			return idx
		}
	}
	return -1
}
