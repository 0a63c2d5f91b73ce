package analysis

import (
	"regexp"
	"strings"

	"github.com/bytedance/sonic"

	"nutrisense-server-go/internal/platform/errors"
)

var fencePattern = regexp.MustCompile("```(?:json)?\n?")

// ExtractJSON pulls the JSON object out of raw model output. Models wrap
// their answer in markdown fences or surround it with prose often enough
// that a plain parse is not sufficient: after stripping fences, a failed
// top-level parse falls back to the first balanced {...} span. If no object
// can be located the whole response is unusable.
func ExtractJSON(text string) ([]byte, error) {
	const op = "analysis.extract"

	stripped := strings.TrimSpace(fencePattern.ReplaceAllString(text, ""))
	if sonic.Valid([]byte(stripped)) && strings.HasPrefix(stripped, "{") {
		return []byte(stripped), nil
	}

	if span, ok := firstBalancedObject(stripped); ok && sonic.Valid([]byte(span)) {
		return []byte(span), nil
	}

	return nil, errors.New(errors.KindParse, op, "model output contained no JSON object")
}

// firstBalancedObject scans for the first top-level {...} span, tracking
// string literals and escapes so braces inside strings do not count.
func firstBalancedObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case inString:
			if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
		case c == '"':
			inString = true
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
