package riderepo

import "errors"

var (
	ErrNotFound      = errors.New("ride not found")
	ErrAlreadyExists = errors.New("ride already exists")

	// ErrActiveRideExists indicates the passenger already holds a ride that is not completed.
	ErrActiveRideExists = errors.New("passenger already has an active ride")
)
