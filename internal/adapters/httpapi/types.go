package httpapi

import (
	"time"

	"github.com/oapi-codegen/nullable"
)

// Wire types for the JSON API.

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code      string                            `json:"code"`
	Message   string                            `json:"message"`
	Details   nullable.Nullable[map[string]any] `json:"details,omitempty"`
	RequestId nullable.Nullable[string]         `json:"requestId,omitempty"`
}

type SignupRequest struct {
	Name       string                    `json:"name"`
	Email      string                    `json:"email"`
	NationalId string                    `json:"nationalId"`
	CarPlate   nullable.Nullable[string] `json:"carPlate,omitempty"`
	// IsPassenger and IsDriver default to false when omitted.
	IsPassenger *bool `json:"isPassenger,omitempty"`
	IsDriver    *bool `json:"isDriver,omitempty"`
}

type SignupResponse struct {
	AccountId string `json:"accountId"`
}

type Account struct {
	AccountId   string                    `json:"accountId"`
	Name        string                    `json:"name"`
	Email       string                    `json:"email"`
	NationalId  string                    `json:"nationalId"`
	CarPlate    nullable.Nullable[string] `json:"carPlate"`
	IsPassenger bool                      `json:"isPassenger"`
	IsDriver    bool                      `json:"isDriver"`
}

type GetAccountResponse struct {
	Account Account `json:"account"`
}

type RequestRideRequest struct {
	AccountId string   `json:"accountId"`
	FromLat   *float64 `json:"fromLat"`
	FromLong  *float64 `json:"fromLong"`
	ToLat     *float64 `json:"toLat"`
	ToLong    *float64 `json:"toLong"`
}

type RequestRideResponse struct {
	RideId string `json:"rideId"`
}

type Ride struct {
	RideId      string    `json:"rideId"`
	PassengerId string    `json:"passengerId"`
	Status      string    `json:"status"`
	FromLat     float64   `json:"fromLat"`
	FromLong    float64   `json:"fromLong"`
	ToLat       float64   `json:"toLat"`
	ToLong      float64   `json:"toLong"`
	Date        time.Time `json:"date"`
}

type GetRideResponse struct {
	Ride Ride `json:"ride"`
}

type ValidateNationalIdRequest struct {
	NationalId string `json:"nationalId"`
}

type ValidateNationalIdResponse struct {
	Valid bool `json:"valid"`
}
