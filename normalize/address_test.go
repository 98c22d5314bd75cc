package normalize

import "testing"

func TestAddress(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"collapses spaces and commas", " 12  Main St ,, London ", "12 Main St, London"},
		{"line breaks become commas", "Flat 2\r\n10 High Street\r\nLeeds", "Flat 2, 10 High Street, Leeds"},
		{"bare newlines", "10 High Street\nLeeds\n", "10 High Street, Leeds"},
		{"commas separated by spaces", "a , , , b", "a, b"},
		{"leading comma dropped", ", , Bristol", "Bristol"},
		{"already clean", "1 Park Lane, London, W1K 1AA", "1 Park Lane, London, W1K 1AA"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Address(tt.input); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestAddressIdempotent(t *testing.T) {
	inputs := []string{
		" 12  Main St ,, London ",
		"a,",
		",\n,\r\n ,x , y\t,,z  ",
		"  \t ",
		"Unit 4 ,  The Mews\r\n\r\nBath,BA1",
		"no commas at all",
	}
	for _, in := range inputs {
		once := Address(in)
		if twice := Address(once); twice != once {
			t.Fatalf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
