package domain

// AccountID is an internal identifier for an account record.
type AccountID string

// RideID is an internal identifier for a ride record.
type RideID string
