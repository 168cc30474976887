package domain

import "strings"

// NormalizeHumanName trims leading/trailing whitespace and collapses internal whitespace runs.
// It is used for account name normalization.
func NormalizeHumanName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeEmail trims surrounding whitespace. Comparison for uniqueness is case-insensitive
// and happens in the repositories.
func NormalizeEmail(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeNationalID strips every character that is not an ASCII digit,
// so "974.563.215-58" becomes "97456321558".
func NormalizeNationalID(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}
