package domain

import "regexp"

var (
	nameRe     = regexp.MustCompile(`^\p{L}+( \p{L}+)+$`)
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+$`)
	carPlateRe = regexp.MustCompile(`^[A-Z]{3}[0-9]{4}$`)
)

// IsValidName requires at least two alphabetic tokens separated by a single space
// once surrounding and repeated whitespace is normalized away.
func IsValidName(name string) bool {
	return nameRe.MatchString(NormalizeHumanName(name))
}

// IsValidEmail checks the local@domain shape only; deliverability is not checked.
func IsValidEmail(email string) bool {
	return emailRe.MatchString(NormalizeEmail(email))
}

// IsValidCarPlate matches three uppercase ASCII letters followed by four digits, e.g. "AAA9999".
func IsValidCarPlate(plate string) bool {
	return carPlateRe.MatchString(plate)
}
