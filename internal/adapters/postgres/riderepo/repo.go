package riderepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/Overland-East-Bay/ride-hail-api/internal/adapters/postgres"
	"github.com/Overland-East-Bay/ride-hail-api/internal/domain"
	"github.com/Overland-East-Bay/ride-hail-api/internal/ports/out/riderepo"
)

// Repo is a Postgres implementation of riderepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, ride riderepo.Ride) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	rideUUID, err := uuid.Parse(string(ride.ID))
	if err != nil {
		return fmt.Errorf("invalid ride id: %w", err)
	}
	passengerUUID, err := uuid.Parse(string(ride.PassengerID))
	if err != nil {
		return fmt.Errorf("invalid passenger id: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO rides (
			ride_id,
			passenger_id,
			status,
			from_lat,
			from_long,
			to_lat,
			to_long,
			date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		rideUUID,
		passengerUUID,
		string(ride.Status),
		ride.FromLat,
		ride.FromLong,
		ride.ToLat,
		ride.ToLong,
		ride.Date.UTC(),
	)
	if err != nil {
		return mapWriteError(err)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.RideID) (riderepo.Ride, error) {
	if r.pool == nil {
		return riderepo.Ride{}, errors.New("nil postgres pool")
	}
	uid, err := uuid.Parse(string(id))
	if err != nil {
		return riderepo.Ride{}, riderepo.ErrNotFound
	}
	return scanRide(r.pool.QueryRow(ctx, selectRide+` WHERE ride_id = $1`, uid))
}

func (r *Repo) FindActiveByPassenger(ctx context.Context, passengerID domain.AccountID) (riderepo.Ride, error) {
	if r.pool == nil {
		return riderepo.Ride{}, errors.New("nil postgres pool")
	}
	uid, err := uuid.Parse(string(passengerID))
	if err != nil {
		return riderepo.Ride{}, riderepo.ErrNotFound
	}
	return scanRide(r.pool.QueryRow(ctx, selectRide+`
		WHERE passenger_id = $1 AND status <> $2
		ORDER BY date DESC
		LIMIT 1
	`, uid, string(domain.RideStatusCompleted)))
}

func (r *Repo) UpdateStatus(ctx context.Context, id domain.RideID, status domain.RideStatus) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	uid, err := uuid.Parse(string(id))
	if err != nil {
		return riderepo.ErrNotFound
	}
	ct, err := r.pool.Exec(ctx, `UPDATE rides SET status = $2 WHERE ride_id = $1`, uid, string(status))
	if err != nil {
		return mapWriteError(err)
	}
	if ct.RowsAffected() == 0 {
		return riderepo.ErrNotFound
	}
	return nil
}

// --- helpers ---

const selectRide = `
	SELECT
		ride_id,
		passenger_id,
		status,
		from_lat,
		from_long,
		to_lat,
		to_long,
		date
	FROM rides`

func mapWriteError(err error) error {
	if pe, ok := postgres.AsPgError(err); ok {
		switch {
		case pe.Code == postgres.UniqueViolationCode && pe.ConstraintName == postgres.RidesOneActivePerPassenger:
			return riderepo.ErrActiveRideExists
		case pe.Code == postgres.UniqueViolationCode && pe.ConstraintName == postgres.RidesPrimaryKeyConstraint:
			return riderepo.ErrAlreadyExists
		}
	}
	return fmt.Errorf("write ride: %w", err)
}

func scanRide(row pgx.Row) (riderepo.Ride, error) {
	var (
		rideID      uuid.UUID
		passengerID uuid.UUID
		status      string
		out         riderepo.Ride
		date        time.Time
	)
	if err := row.Scan(
		&rideID,
		&passengerID,
		&status,
		&out.FromLat,
		&out.FromLong,
		&out.ToLat,
		&out.ToLong,
		&date,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return riderepo.Ride{}, riderepo.ErrNotFound
		}
		return riderepo.Ride{}, err
	}
	out.ID = domain.RideID(rideID.String())
	out.PassengerID = domain.AccountID(passengerID.String())
	out.Status = domain.RideStatus(status)
	out.Date = date.UTC()
	return out, nil
}
