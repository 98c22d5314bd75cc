package normalize

import (
	"encoding/json"
	"math"
	"testing"
)

func TestPrice(t *testing.T) {
	tests := []struct {
		name   string
		input  any
		symbol string
		want   string
	}{
		{"period suffix", "1500pcm", "£", "£1,500 pcm"},
		{"suffix with space and case", "2,250 PW", "£", "£2,250 pw"},
		{"already formatted", "£1,500", "£", "£1,500"},
		{"already formatted dollars", "$3,200+", "$", "$3,200+"},
		{"plain amount", "250000", "£", "£250,000"},
		{"dollar amount", "1250000", "$", "$1,250,000"},
		{"decimal rounds", "999.6", "£", "£1,000"},
		{"plus suffix", "1500+", "$", "$1,500 +"},
		{"number value", float64(475000), "$", "$475,000"},
		{"json number", json.Number("82000"), "£", "£82,000"},
		{"unparsable passes through", "Price on application", "£", "Price on application"},
		{"nil", nil, "£", ""},
		{"blank", "   ", "£", ""},
		{"amount too large for int64 passes through", "99999999999999999999", "£", "99999999999999999999"},
		{"huge suffixed amount passes through", "99999999999999999999pcm", "£", "99999999999999999999pcm"},
		{"huge number value", float64(1e20), "£", ""},
		{"huge json number", json.Number("1e30"), "$", ""},
		{"int value", 1500, "£", "£1,500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Price(tt.input, tt.symbol); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestGroup(t *testing.T) {
	tests := map[int64]string{
		0:       "0",
		999:     "999",
		1000:    "1,000",
		12345:   "12,345",
		1234567: "1,234,567",
		-4500:   "-4,500",

		math.MaxInt64: "9,223,372,036,854,775,807",
		math.MinInt64: "-9,223,372,036,854,775,808",
	}
	for in, want := range tests {
		if got := Group(in); got != want {
			t.Fatalf("Group(%d): expected %q, got %q", in, want, got)
		}
	}
}

func TestMaxOfRange(t *testing.T) {
	if got := MaxOfRange("$400,000 - $450,000"); got != "$450,000" {
		t.Fatalf("expected $450,000, got %q", got)
	}
	if got := MaxOfRange("$399,000"); got != "$399,000" {
		t.Fatalf("expected unchanged price, got %q", got)
	}
}
