package structured

import (
	"regexp"
	"strings"

	"github.com/bytedance/sonic"
)

var (
	jsonFencePattern = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	anyFencePattern  = regexp.MustCompile("(?s)```[a-zA-Z0-9]*\\s*(.*?)\\s*```")
)

// ExtractJSON locates a JSON document in model text. A ```json fenced block wins, then any
// fenced block holding JSON, then the first balanced top-level object.
func ExtractJSON(text string) (any, bool) {
	if m := jsonFencePattern.FindStringSubmatch(text); m != nil {
		if v, ok := parseJSON(m[1]); ok {
			return v, true
		}
	}
	for _, m := range anyFencePattern.FindAllStringSubmatch(text, -1) {
		body := strings.TrimSpace(m[1])
		if strings.HasPrefix(body, "{") || strings.HasPrefix(body, "[") {
			if v, ok := parseJSON(body); ok {
				return v, true
			}
		}
	}
	trimmed := strings.TrimSpace(text)
	if v, ok := parseJSON(trimmed); ok && isContainer(v) {
		return v, true
	}
	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end := matchBrace(text, start); end > start {
			if v, ok := parseJSON(text[start : end+1]); ok {
				return v, true
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return nil, false
}

func parseJSON(s string) (any, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	var v any
	if err := sonic.UnmarshalString(s, &v); err != nil {
		return nil, false
	}
	return v, true
}

func isContainer(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	default:
		return false
	}
}

// matchBrace returns the index of the brace closing the one at start, or -1.
func matchBrace(s string, start int) int {
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
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
