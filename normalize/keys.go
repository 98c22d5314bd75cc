package normalize

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Lookup resolves a dotted path ("agent.phone") inside nested JSON objects.
func Lookup(m map[string]any, path string) (any, bool) {
	var cur any = m
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// FirstPresent returns the value of the first candidate key (or dotted path)
// holding something usable: not null, not a blank string, not an empty list.
func FirstPresent(m map[string]any, keys ...string) (any, bool) {
	if m == nil {
		return nil, false
	}
	for _, key := range keys {
		v, ok := Lookup(m, key)
		if !ok || isEmpty(v) {
			continue
		}
		return v, true
	}
	return nil, false
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}

// String returns the first candidate holding a non-blank scalar, rendered as
// text. Numbers are formatted without a trailing ".0". Objects and lists are
// skipped so a nested "estate_agent" block never shadows a flat name field.
func String(m map[string]any, keys ...string) string {
	if m == nil {
		return ""
	}
	for _, key := range keys {
		v, ok := Lookup(m, key)
		if !ok {
			continue
		}
		if s := Stringify(v); s != "" {
			return s
		}
	}
	return ""
}

func Stringify(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// Object returns the first candidate key holding a JSON object.
func Object(m map[string]any, keys ...string) map[string]any {
	for _, key := range keys {
		v, ok := Lookup(m, key)
		if !ok {
			continue
		}
		if obj, ok := v.(map[string]any); ok && len(obj) > 0 {
			return obj
		}
	}
	return nil
}

var sequenceSplitRegex = regexp.MustCompile(`[,•\n]+`)

var urlKeys = []string{"url", "src", "image_url", "href"}

// Sequence coerces a list-ish value into trimmed, non-empty strings. Strings are
// split on commas, bullets and newlines. Objects inside lists contribute their
// url/src field. Anything else yields an empty slice.
func Sequence(v any) []string {
	out := []string{}
	switch t := v.(type) {
	case string:
		for _, part := range sequenceSplitRegex.Split(t, -1) {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
	case []string:
		for _, s := range t {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, item := range t {
			var s string
			if obj, ok := item.(map[string]any); ok {
				s = String(obj, urlKeys...)
			} else {
				s = Stringify(item)
			}
			if s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
