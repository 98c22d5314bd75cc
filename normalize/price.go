package normalize

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	priceRegex     = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)\s*(pcm|pw|\+)?$`)
	priceStripper  = strings.NewReplacer(",", "", "£", "", "$", "", "€", "")
	currencyPrefix = []string{"£", "$", "€"}
)

// Price formats a raw price as symbol + grouped whole amount + optional period
// suffix ("£1,500 pcm"). Strings that already start with a currency symbol and
// strings that do not look like an amount are returned unchanged. Absent input
// yields "".
func Price(v any, symbol string) string {
	switch p := v.(type) {
	case nil:
		return ""
	case string:
		return priceFromString(p, symbol)
	case float64:
		s, _ := formatAmount(p, symbol, "")
		return s
	case int:
		return symbol + Group(int64(p))
	case int64:
		return symbol + Group(p)
	case json.Number:
		f, err := p.Float64()
		if err != nil {
			return p.String()
		}
		s, _ := formatAmount(f, symbol, "")
		return s
	default:
		return ""
	}
}

func priceFromString(raw, symbol string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	for _, c := range currencyPrefix {
		if strings.HasPrefix(trimmed, c) {
			return raw
		}
	}

	clean := strings.TrimSpace(priceStripper.Replace(trimmed))
	m := priceRegex.FindStringSubmatch(clean)
	if m == nil {
		return raw
	}
	amount, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return raw
	}
	s, ok := formatAmount(amount, symbol, strings.ToLower(m[2]))
	if !ok {
		return raw
	}
	return s
}

// formatAmount reports false for amounts that do not fit an int64.
func formatAmount(amount float64, symbol, suffix string) (string, bool) {
	rounded := math.Round(amount)
	if math.IsNaN(rounded) || rounded >= math.MaxInt64 || rounded < math.MinInt64 {
		return "", false
	}
	s := symbol + Group(int64(rounded))
	if suffix != "" {
		s += " " + suffix
	}
	return s, true
}

// Group renders n with comma thousands separators.
func Group(n int64) string {
	if n < 0 {
		// -(n+1)+1 keeps MinInt64 in range.
		return "-" + groupDigits(strconv.FormatUint(uint64(-(n+1))+1, 10))
	}
	return groupDigits(strconv.FormatInt(n, 10))
}

func groupDigits(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// MaxOfRange returns the upper bound of a "low - high" price range, or the
// input unchanged when it is not a range.
func MaxOfRange(price string) string {
	if !strings.Contains(price, "-") {
		return price
	}
	parts := strings.Split(price, "-")
	return strings.TrimSpace(parts[len(parts)-1])
}
