package rides

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Overland-East-Bay/ride-hail-api/internal/domain"
	"github.com/Overland-East-Bay/ride-hail-api/internal/platform/metrics"
	"github.com/Overland-East-Bay/ride-hail-api/internal/ports/out/accountrepo"
	clockport "github.com/Overland-East-Bay/ride-hail-api/internal/ports/out/clock"
	"github.com/Overland-East-Bay/ride-hail-api/internal/ports/out/events"
	"github.com/Overland-East-Bay/ride-hail-api/internal/ports/out/riderepo"
)

type Service struct {
	rides     riderepo.Repository
	accounts  accountrepo.Repository
	clk       clockport.Clock
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger

	newRideID func() domain.RideID
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

func NewService(rides riderepo.Repository, accounts accountrepo.Repository, clk clockport.Clock, opts ...Option) *Service {
	s := &Service{
		rides:     rides,
		accounts:  accounts,
		clk:       clk,
		publisher: events.Nop{},
		logger:    slog.Default(),
		newRideID: func() domain.RideID {
			return domain.RideID(uuid.NewString())
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetNewRideIDForTest overrides id minting.
func (s *Service) SetNewRideIDForTest(fn func() domain.RideID) {
	s.newRideID = fn
}

// RequestRide admits a ride for a passenger with no ride in a non-completed
// state. Coordinates are stored as given.
func (s *Service) RequestRide(ctx context.Context, in RequestRideInput) (id domain.RideID, err error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveOperation("request_ride", time.Since(start))
		s.metrics.IncRideRequest(outcome(err))
	}()

	account, err := s.accounts.GetByID(ctx, in.AccountID)
	if err != nil {
		if errors.Is(err, accountrepo.ErrNotFound) {
			return "", s.reject(ctx, in.AccountID, withDetails(ErrAccountNotFound, "accountId", "no such account"))
		}
		return "", err
	}
	if !account.IsPassenger {
		return "", s.reject(ctx, in.AccountID, withDetails(ErrNotAPassenger, "accountId", "account is not registered as a passenger"))
	}

	if active, err := s.rides.FindActiveByPassenger(ctx, account.ID); err == nil {
		return "", s.reject(ctx, in.AccountID, withDetails(ErrOngoingRideExists, "rideId", string(active.ID)))
	} else if !errors.Is(err, riderepo.ErrNotFound) {
		return "", err
	}

	id = s.newRideID()
	now := s.clk.Now()
	if err := s.rides.Create(ctx, riderepo.Ride{
		ID:          id,
		PassengerID: account.ID,
		Status:      domain.RideStatusRequested,
		FromLat:     in.From.Lat,
		FromLong:    in.From.Long,
		ToLat:       in.To.Lat,
		ToLong:      in.To.Long,
		Date:        now,
	}); err != nil {
		if errors.Is(err, riderepo.ErrActiveRideExists) {
			return "", s.reject(ctx, in.AccountID, ErrOngoingRideExists)
		}
		s.logger.ErrorContext(ctx, "ride persist failed", "account_id", string(in.AccountID), "err", err)
		return "", err
	}

	s.logger.InfoContext(ctx, "ride requested", "ride_id", string(id), "account_id", string(account.ID))
	s.publish(ctx, events.Event{
		Type:        events.TypeRideRequested,
		AggregateID: string(id),
		OccurredAt:  now,
		Payload: RequestedPayload{
			RideID:      id,
			PassengerID: account.ID,
			FromLat:     in.From.Lat,
			FromLong:    in.From.Long,
			ToLat:       in.To.Lat,
			ToLong:      in.To.Long,
		},
	})
	return id, nil
}

// GetRide returns ok=false when no ride has the id.
func (s *Service) GetRide(ctx context.Context, id domain.RideID) (domain.Ride, bool, error) {
	r, err := s.rides.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, riderepo.ErrNotFound) {
			return domain.Ride{}, false, nil
		}
		return domain.Ride{}, false, err
	}
	return toDomain(r), true, nil
}

func (s *Service) reject(ctx context.Context, accountID domain.AccountID, e *Error) *Error {
	s.logger.InfoContext(ctx, "ride request rejected", "account_id", string(accountID), "code", e.Code)
	return e
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	err := s.publisher.Publish(ctx, e)
	s.metrics.IncEventPublished(string(e.Type), err)
	if err != nil {
		s.logger.WarnContext(ctx, "event publish failed", "type", string(e.Type), "aggregate_id", e.AggregateID, "err", err)
	}
}

func outcome(err error) string {
	if err == nil {
		return metrics.OutcomeAccepted
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return metrics.OutcomeError
}

func toDomain(r riderepo.Ride) domain.Ride {
	return domain.Ride{
		ID:          r.ID,
		PassengerID: r.PassengerID,
		Status:      r.Status,
		From:        domain.Coordinate{Lat: r.FromLat, Long: r.FromLong},
		To:          domain.Coordinate{Lat: r.ToLat, Long: r.ToLong},
		Date:        r.Date,
	}
}
