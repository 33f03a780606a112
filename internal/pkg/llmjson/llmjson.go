// Package llmjson extracts a JSON object from generation output that
// may be wrapped in markdown code fences or surrounding prose.
package llmjson

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrNoJSON means no decodable JSON object was found in the text.
var ErrNoJSON = errors.New("no JSON object found in response")

var (
	openingFence = regexp.MustCompile("^```(?:json)?\\s*")
	closingFence = regexp.MustCompile("\\s*```$")
)

// Extract returns the raw bytes of the first complete JSON object in
// the text, tolerating code fences and prose around the payload.
func Extract(raw string) ([]byte, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = openingFence.ReplaceAllString(cleaned, "")
	cleaned = closingFence.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	if json.Valid([]byte(cleaned)) && strings.HasPrefix(cleaned, "{") {
		return []byte(cleaned), nil
	}

	// Embedded object inside prose: scan for balanced braces, aware of
	// string literals and escapes.
	start := strings.IndexByte(cleaned, '{')
	if start < 0 {
		return nil, ErrNoJSON
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(cleaned); i++ {
		c := cleaned[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				candidate := cleaned[start : i+1]
				if json.Valid([]byte(candidate)) {
					return []byte(candidate), nil
				}
				return nil, ErrNoJSON
			}
		}
	}
	return nil, ErrNoJSON
}

// Decode extracts the embedded JSON object and unmarshals it into v.
func Decode(raw string, v any) error {
	data, err := Extract(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
