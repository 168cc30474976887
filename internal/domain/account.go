package domain

import "time"

// Account is the domain representation of a passenger and/or driver account.
type Account struct {
	ID AccountID

	Name       string
	Email      string
	NationalID string
	// CarPlate is required for drivers; nil means unset.
	CarPlate *string

	IsPassenger bool
	IsDriver    bool

	CreatedAt time.Time
}
