package rides

import "github.com/Overland-East-Bay/ride-hail-api/internal/domain"

type RequestRideInput struct {
	AccountID domain.AccountID
	From      domain.Coordinate
	To        domain.Coordinate
}

// RequestedPayload is the body of the ride.requested event.
type RequestedPayload struct {
	RideID      domain.RideID    `json:"rideId"`
	PassengerID domain.AccountID `json:"passengerId"`
	FromLat     float64          `json:"fromLat"`
	FromLong    float64          `json:"fromLong"`
	ToLat       float64          `json:"toLat"`
	ToLong      float64          `json:"toLong"`
}
