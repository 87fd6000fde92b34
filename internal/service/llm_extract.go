package service

import (
	"encoding/json"
	"strings"
)

type suggestionPayload struct {
	Category    *string `json:"category"`
	ClientNotes *string `json:"client_notes"`
}

// extractSuggestionJSON parses the model's free-form text output. The whole
// response is tried as JSON first; on failure, the first well-formed fenced
// code block (triple-backtick pair, optional "json" language tag) wins.
// Anything else is ErrUnparseable.
func extractSuggestionJSON(raw string) (*suggestionPayload, error) {
	raw = strings.TrimSpace(raw)

	if payload, ok := tryParseSuggestion(raw); ok {
		return payload, nil
	}

	for _, block := range fencedBlocks(raw) {
		if payload, ok := tryParseSuggestion(block); ok {
			return payload, nil
		}
	}

	return nil, ErrUnparseable
}

func tryParseSuggestion(s string) (*suggestionPayload, bool) {
	var payload suggestionPayload
	if err := json.Unmarshal([]byte(s), &payload); err != nil {
		return nil, false
	}
	return &payload, true
}

// fencedBlocks returns the inner text of every complete pair of ```
// delimiters, in order. An unclosed fence is ignored.
func fencedBlocks(s string) []string {
	var blocks []string
	for {
		start := strings.Index(s, "```")
		if start < 0 {
			break
		}
		rest := s[start+3:]
		end := strings.Index(rest, "```")
		if end < 0 {
			break
		}
		blocks = append(blocks, stripLanguageTag(rest[:end]))
		s = rest[end+3:]
	}
	return blocks
}

func stripLanguageTag(block string) string {
	inner := strings.TrimSpace(block)
	if strings.HasPrefix(strings.ToLower(inner), "json") {
		inner = strings.TrimSpace(inner[len("json"):])
	}
	return inner
}
