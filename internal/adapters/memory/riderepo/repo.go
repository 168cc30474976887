package riderepo

import (
	"context"
	"sync"

	"github.com/Overland-East-Bay/ride-hail-api/internal/domain"
	"github.com/Overland-East-Bay/ride-hail-api/internal/ports/out/riderepo"
)

// Repo is an in-memory implementation of riderepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu   sync.RWMutex
	byID map[domain.RideID]riderepo.Ride
	// activeByPassenger mirrors the partial unique index used by the Postgres adapter.
	activeByPassenger map[domain.AccountID]domain.RideID
}

func NewRepo() *Repo {
	return &Repo{
		byID:              make(map[domain.RideID]riderepo.Ride),
		activeByPassenger: make(map[domain.AccountID]domain.RideID),
	}
}

func (r *Repo) Create(ctx context.Context, ride riderepo.Ride) error {
	_ = ctx
	if ride.ID == "" {
		return riderepo.ErrAlreadyExists // treat empty ID as invalid for now
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[ride.ID]; ok {
		return riderepo.ErrAlreadyExists
	}
	if ride.Status.IsActive() {
		if _, ok := r.activeByPassenger[ride.PassengerID]; ok {
			return riderepo.ErrActiveRideExists
		}
		r.activeByPassenger[ride.PassengerID] = ride.ID
	}
	r.byID[ride.ID] = ride
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.RideID) (riderepo.Ride, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	ride, ok := r.byID[id]
	if !ok {
		return riderepo.Ride{}, riderepo.ErrNotFound
	}
	return ride, nil
}

func (r *Repo) FindActiveByPassenger(ctx context.Context, passengerID domain.AccountID) (riderepo.Ride, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.activeByPassenger[passengerID]
	if !ok {
		return riderepo.Ride{}, riderepo.ErrNotFound
	}
	ride, ok := r.byID[id]
	if !ok {
		return riderepo.Ride{}, riderepo.ErrNotFound
	}
	return ride, nil
}

func (r *Repo) UpdateStatus(ctx context.Context, id domain.RideID, status domain.RideStatus) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	ride, ok := r.byID[id]
	if !ok {
		return riderepo.ErrNotFound
	}
	if status.IsActive() {
		if other, ok := r.activeByPassenger[ride.PassengerID]; ok && other != id {
			return riderepo.ErrActiveRideExists
		}
		r.activeByPassenger[ride.PassengerID] = id
	} else if r.activeByPassenger[ride.PassengerID] == id {
		delete(r.activeByPassenger, ride.PassengerID)
	}
	ride.Status = status
	r.byID[id] = ride
	return nil
}
