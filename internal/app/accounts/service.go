package accounts

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Overland-East-Bay/ride-hail-api/internal/domain"
	"github.com/Overland-East-Bay/ride-hail-api/internal/platform/metrics"
	"github.com/Overland-East-Bay/ride-hail-api/internal/ports/out/accountrepo"
	clockport "github.com/Overland-East-Bay/ride-hail-api/internal/ports/out/clock"
	"github.com/Overland-East-Bay/ride-hail-api/internal/ports/out/events"
)

type Service struct {
	repo      accountrepo.Repository
	clk       clockport.Clock
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger

	newAccountID func() domain.AccountID
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

func NewService(repo accountrepo.Repository, clk clockport.Clock, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		clk:       clk,
		publisher: events.Nop{},
		logger:    slog.Default(),
		newAccountID: func() domain.AccountID {
			return domain.AccountID(uuid.NewString())
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetNewAccountIDForTest overrides id minting.
func (s *Service) SetNewAccountIDForTest(fn func() domain.AccountID) {
	s.newAccountID = fn
}

// Signup registers an account. Checks run in a fixed order and the first
// failure is returned: duplicate email, name, email, national id, then the
// car plate for drivers. The id is minted only once every check has passed.
func (s *Service) Signup(ctx context.Context, in SignupInput) (out SignupOutput, err error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveOperation("signup", time.Since(start))
		s.metrics.IncSignup(outcome(err))
	}()

	email := domain.NormalizeEmail(in.Email)

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return SignupOutput{}, s.reject(ctx, withDetails(ErrDuplicatedAccount, "email", "already registered"))
	} else if !errors.Is(err, accountrepo.ErrNotFound) {
		return SignupOutput{}, err
	}

	if !domain.IsValidName(in.Name) {
		return SignupOutput{}, s.reject(ctx, withDetails(ErrInvalidName, "name", "must be at least two words of letters"))
	}
	if !domain.IsValidEmail(email) {
		return SignupOutput{}, s.reject(ctx, withDetails(ErrInvalidEmail, "email", "must look like local@domain"))
	}
	if !domain.ValidateNationalID(in.NationalID) {
		return SignupOutput{}, s.reject(ctx, withDetails(ErrInvalidNationalID, "nationalId", "check digits do not match"))
	}
	var carPlate *string
	if in.CarPlate != nil {
		p := strings.TrimSpace(*in.CarPlate)
		carPlate = &p
	}
	if in.IsDriver && (carPlate == nil || !domain.IsValidCarPlate(*carPlate)) {
		return SignupOutput{}, s.reject(ctx, withDetails(ErrInvalidCarPlate, "carPlate", "must be three letters followed by four digits"))
	}

	id := s.newAccountID()
	now := s.clk.Now()
	rec := accountrepo.Account{
		ID:          id,
		Name:        domain.NormalizeHumanName(in.Name),
		Email:       email,
		NationalID:  domain.NormalizeNationalID(in.NationalID),
		CarPlate:    carPlate,
		IsPassenger: in.IsPassenger,
		IsDriver:    in.IsDriver,
		CreatedAt:   now,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		if errors.Is(err, accountrepo.ErrEmailTaken) {
			return SignupOutput{}, s.reject(ctx, withDetails(ErrDuplicatedAccount, "email", "already registered"))
		}
		s.logger.ErrorContext(ctx, "signup persist failed", "err", err)
		return SignupOutput{}, err
	}

	s.logger.InfoContext(ctx, "signup accepted",
		"account_id", string(id),
		"is_passenger", in.IsPassenger,
		"is_driver", in.IsDriver,
	)
	s.publish(ctx, events.Event{
		Type:        events.TypeAccountSignedUp,
		AggregateID: string(id),
		OccurredAt:  now,
		Payload: SignedUpPayload{
			AccountID:   id,
			Email:       email,
			IsPassenger: in.IsPassenger,
			IsDriver:    in.IsDriver,
		},
	})
	return SignupOutput{AccountID: id}, nil
}

// GetAccount returns ok=false when no account has the id.
func (s *Service) GetAccount(ctx context.Context, id domain.AccountID) (domain.Account, bool, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, accountrepo.ErrNotFound) {
			return domain.Account{}, false, nil
		}
		return domain.Account{}, false, err
	}
	return toDomain(a), true, nil
}

func (s *Service) reject(ctx context.Context, e *Error) *Error {
	s.logger.InfoContext(ctx, "signup rejected", "code", e.Code)
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

func toDomain(a accountrepo.Account) domain.Account {
	var plate *string
	if a.CarPlate != nil {
		p := *a.CarPlate
		plate = &p
	}
	return domain.Account{
		ID:          a.ID,
		Name:        a.Name,
		Email:       a.Email,
		NationalID:  a.NationalID,
		CarPlate:    plate,
		IsPassenger: a.IsPassenger,
		IsDriver:    a.IsDriver,
		CreatedAt:   a.CreatedAt,
	}
}
