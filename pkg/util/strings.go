package util

import "strconv"

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// ParsePriceLabel extracts the integer amount from a display label such as
// "₹1,00,000" by keeping only ASCII digits. Labels without digits yield (0, false).
func ParsePriceLabel(label string) (int64, bool) {
	digits := make([]byte, 0, len(label))
	for i := 0; i < len(label); i++ {
		if c := label[i]; c >= '0' && c <= '9' {
			digits = append(digits, c)
		}
	}
	if len(digits) == 0 {
		return 0, false
	}
	v, err := strconv.ParseInt(string(digits), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
