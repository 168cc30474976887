package domain

const nationalIDLength = 11

// ValidateNationalID reports whether raw is a national identification number
// whose two trailing check digits match the modulo-11 weighted sum of the
// preceding digits. Punctuation is ignored; anything that does not normalize
// to exactly 11 digits is rejected, as are numbers made of one repeated digit.
func ValidateNationalID(raw string) bool {
	if raw == "" {
		return false
	}
	digits := NormalizeNationalID(raw)
	if len(digits) != nationalIDLength {
		return false
	}
	if allDigitsEqual(digits) {
		return false
	}
	dg1 := checkDigit(digits, 10)
	dg2 := checkDigit(digits, 11)
	return digits[9] == '0'+dg1 && digits[10] == '0'+dg2
}

// checkDigit walks digits with weights starting at factor and decreasing by
// one, stopping once the weight reaches 1.
func checkDigit(digits string, factor int) byte {
	total := 0
	for i := 0; i < len(digits) && factor > 1; i++ {
		total += int(digits[i]-'0') * factor
		factor--
	}
	rest := total % 11
	if rest < 2 {
		return 0
	}
	return byte(11 - rest)
}

func allDigitsEqual(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}
