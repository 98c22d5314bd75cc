package normalize

import "testing"

func TestPhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"parenthesized", "Call (407) 753-7034 today", "(407) 753-7034"},
		{"dashed", "Office: 407-753-7034", "407-753-7034"},
		{"dotted", "407.753.7034", "407.753.7034"},
		{"bare digits", "phone 4077537034", "(407) 753-7034"},
		{"parenthesized beats dashed", "407-111-2222 or (407) 753-7034", "(407) 753-7034"},
		{"none", "no number here", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Phone(tt.input); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestFindPhone(t *testing.T) {
	direct := map[string]any{
		"management_company": map[string]any{"name": "Homevest", "phone_number": "(407) 753-7034"},
		"description":        "Call 321-555-0000",
	}
	if got := FindPhone(direct); got != "(407) 753-7034" {
		t.Fatalf("expected direct field, got %q", got)
	}

	fromDescription := map[string]any{"description": "Leasing office 321-555-0199, open daily"}
	if got := FindPhone(fromDescription); got != "321-555-0199" {
		t.Fatalf("expected description match, got %q", got)
	}

	fromAnyField := map[string]any{"notes": "text 3215550123 for a tour", "title": "Nice place"}
	if got := FindPhone(fromAnyField); got != "(321) 555-0123" {
		t.Fatalf("expected fallback match, got %q", got)
	}

	if got := FindPhone(map[string]any{"title": "Nothing"}); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}
