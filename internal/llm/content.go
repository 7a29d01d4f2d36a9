package llm

import (
	"bytes"
	"encoding/json"
	"strings"
)

// contentPart is one element of an array-valued message content.
type contentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NormalizeContent turns message content into plain text. Providers return
// either a string or an array of parts; string parts and parts of type
// "text" are concatenated, everything else is dropped. Null or unknown
// shapes produce "".
func NormalizeContent(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	case '[':
		var parts []json.RawMessage
		if err := json.Unmarshal(raw, &parts); err != nil {
			return ""
		}
		var sb strings.Builder
		for _, p := range parts {
			sb.WriteString(normalizePart(p))
		}
		return sb.String()
	default:
		return ""
	}
}

func normalizePart(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	case '{':
		var part contentPart
		if err := json.Unmarshal(raw, &part); err == nil && part.Type == "text" {
			return part.Text
		}
	}
	return ""
}
