package normalize

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var digitRunRegex = regexp.MustCompile(`\d+`)

// Int extracts an integer from a JSON value. Strings contribute their first run
// of digits ("3 bedrooms" -> 3). Anything else yields nil.
func Int(v any) *int {
	switch n := v.(type) {
	case nil:
		return nil
	case *int:
		if n == nil {
			return nil
		}
		i := *n
		return &i
	case float64:
		return intFromFloat(n)
	case int:
		return &n
	case int64:
		i := int(n)
		return &i
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return intFromFloat(f)
		}
		return Int(n.String())
	case string:
		m := digitRunRegex.FindString(n)
		if m == "" {
			return nil
		}
		i, err := strconv.Atoi(m)
		if err != nil {
			return nil
		}
		return &i
	default:
		return nil
	}
}

// intFromFloat truncates f, or returns nil when it is not finite or does not
// fit an int.
func intFromFloat(f float64) *int {
	if math.IsNaN(f) || f >= math.MaxInt || f < math.MinInt {
		return nil
	}
	i := int(f)
	return &i
}

// SquareFeet is Int with thousands separators ignored ("1,234 sq ft" -> 1234).
// Zero and negative areas are treated as absent.
func SquareFeet(v any) *int {
	if s, ok := v.(string); ok {
		v = strings.ReplaceAll(s, ",", "")
	}
	n := Int(v)
	if n == nil || *n <= 0 {
		return nil
	}
	return n
}

// SquareFeetLabel renders an area for image templates: "1,234 sq ft". Values
// that already carry the unit pass through; unusable values give "".
func SquareFeetLabel(v any) string {
	if s, ok := v.(string); ok && strings.Contains(strings.ToLower(s), "sq ft") {
		return s
	}
	n := SquareFeet(v)
	if n == nil {
		return ""
	}
	return Group(int64(*n)) + " sq ft"
}

// VideoSquareFeetLabel renders an area for video templates: "1,234 SQ FT" or "N/A".
func VideoSquareFeetLabel(v any) string {
	n := SquareFeet(v)
	if n == nil {
		return "N/A"
	}
	return Group(int64(*n)) + " SQ FT"
}
