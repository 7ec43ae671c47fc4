package extract

import (
	"encoding/json"
	"strings"
)

// DecodeObject is a best-effort structured decode: it tries the whole text
// as JSON first, then the first balanced {...} span. It returns false when
// no object could be decoded, so callers can distinguish decode failure
// from a legitimately empty result. The direct path only accepts a
// top-level object: bare "null" unmarshals cleanly into a map while
// leaving it nil, which would masquerade as an empty extraction.
func DecodeObject(text string, v any) bool {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") && json.Unmarshal([]byte(trimmed), v) == nil {
		return true
	}
	span, ok := firstObjectSpan(trimmed)
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(span), v) == nil
}

// firstObjectSpan returns the first balanced top-level {...} span in text.
// Braces inside JSON strings are ignored.
func firstObjectSpan(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
