package util

import "testing"

func TestParsePriceLabel(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"₹2,100", 2100, true},
		{"₹1,00,000", 100000, true},
		{"₹11,00,000", 1100000, true},
		{"Free", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := ParsePriceLabel(c.in)
		if got != c.want || ok != c.ok {
			t.Fatalf("ParsePriceLabel(%q) = %d, %v; want %d, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestParseIntDefault(t *testing.T) {
	if got := ParseIntDefault("", 7); got != 7 {
		t.Fatalf("expected default, got %d", got)
	}
	if got := ParseIntDefault("x", 7); got != 7 {
		t.Fatalf("expected default on invalid, got %d", got)
	}
	if got := ParseIntDefault("42", 7); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
}
