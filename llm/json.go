package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ParseError reports model output that could not be decoded as the expected
// JSON shape. Raw carries the (truncated) original text so callers can
// degrade to a sentinel payload instead of failing the whole request.
type ParseError struct {
	Raw string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("model output is not valid JSON: %.80s", e.Raw)
}

// Payload is the sentinel section value used when an analysis section is
// kept despite a parse failure.
func (e *ParseError) Payload() map[string]string {
	return map[string]string{"parse_error": e.Raw}
}

const parseErrorMaxRaw = 2000

var codeFencePattern = regexp.MustCompile("```(?:json)?")

// DecodeLenient decodes model output into v. It strips markdown code
// fences, tries a direct parse, and then falls back to the first balanced
// JSON object or array found in the text. On failure it returns a
// *ParseError carrying the raw text.
func DecodeLenient(raw string, v any) error {
	cleaned := strings.TrimSpace(codeFencePattern.ReplaceAllString(raw, ""))

	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}

	if fragment, ok := firstJSONFragment(cleaned); ok {
		if err := json.Unmarshal([]byte(fragment), v); err == nil {
			return nil
		}
	}

	truncated := raw
	if len(truncated) > parseErrorMaxRaw {
		truncated = truncated[:parseErrorMaxRaw]
	}
	return &ParseError{Raw: truncated}
}

// firstJSONFragment returns the first balanced {...} or [...] substring.
// Quotes and escapes are honored so braces inside strings don't count.
func firstJSONFragment(s string) (string, bool) {
	start := -1
	var open, close byte
	for i := 0; i < len(s); i++ {
		if s[i] == '{' || s[i] == '[' {
			start = i
			open = s[i]
			if open == '{' {
				close = '}'
			} else {
				close = ']'
			}
			break
		}
	}
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
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
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
