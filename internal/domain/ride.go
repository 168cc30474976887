package domain

import "time"

type RideStatus string

const (
	RideStatusRequested  RideStatus = "requested"
	RideStatusAccepted   RideStatus = "accepted"
	RideStatusInProgress RideStatus = "in_progress"
	RideStatusCompleted  RideStatus = "completed"
	RideStatusCancelled  RideStatus = "cancelled"
)

func (s RideStatus) String() string { return string(s) }

// IsValid reports whether s is one of the known ride states.
func (s RideStatus) IsValid() bool {
	switch s {
	case RideStatusRequested, RideStatusAccepted, RideStatusInProgress, RideStatusCompleted, RideStatusCancelled:
		return true
	}
	return false
}

// IsActive reports whether a ride in this state counts against the
// one-ongoing-ride-per-passenger rule. Only completed rides are released.
func (s RideStatus) IsActive() bool {
	return s != RideStatusCompleted
}

// Coordinate is a caller-supplied position. Range checks are not applied.
type Coordinate struct {
	Lat  float64
	Long float64
}

type Ride struct {
	ID          RideID
	PassengerID AccountID
	Status      RideStatus

	From Coordinate
	To   Coordinate

	// Date is the server-assigned creation timestamp.
	Date time.Time
}
