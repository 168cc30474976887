package riderepo

import (
	"context"
	"time"

	"github.com/Overland-East-Bay/ride-hail-api/internal/domain"
)

// Ride is the persistence shape used by the ride repository.
// It is not an HTTP DTO.
type Ride struct {
	ID          domain.RideID
	PassengerID domain.AccountID
	Status      domain.RideStatus

	FromLat  float64
	FromLong float64
	ToLat    float64
	ToLong   float64

	Date time.Time
}

// Repository provides access to persisted rides.
//
// Create must refuse a second active ride (status != completed) for the same
// passenger with ErrActiveRideExists, independently of any FindActiveByPassenger pre-check.
type Repository interface {
	Create(ctx context.Context, r Ride) error

	GetByID(ctx context.Context, id domain.RideID) (Ride, error)

	// FindActiveByPassenger returns the passenger's ride whose status is not completed,
	// or ErrNotFound.
	FindActiveByPassenger(ctx context.Context, passengerID domain.AccountID) (Ride, error)

	// UpdateStatus is used by collaborators that drive a ride past "requested".
	UpdateStatus(ctx context.Context, id domain.RideID, status domain.RideStatus) error
}
