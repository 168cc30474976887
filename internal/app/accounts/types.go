package accounts

import "github.com/Overland-East-Bay/ride-hail-api/internal/domain"

type SignupInput struct {
	Name       string
	Email      string
	NationalID string
	// CarPlate is only checked when IsDriver is set.
	CarPlate *string

	IsPassenger bool
	IsDriver    bool
}

type SignupOutput struct {
	AccountID domain.AccountID
}

// SignedUpPayload is the body of the account.signed_up event.
type SignedUpPayload struct {
	AccountID   domain.AccountID `json:"accountId"`
	Email       string           `json:"email"`
	IsPassenger bool             `json:"isPassenger"`
	IsDriver    bool             `json:"isDriver"`
}
