package accountrepo

import (
	"context"
	"time"

	"github.com/Overland-East-Bay/ride-hail-api/internal/domain"
)

// Account is the persistence shape used by the account repository.
// It's used as an internal record, not an HTTP DTO.
type Account struct {
	ID domain.AccountID

	Name  string
	Email string
	// NationalID is stored digits-only.
	NationalID string
	// CarPlate is nil when the account has no vehicle on file.
	CarPlate *string

	IsPassenger bool
	IsDriver    bool

	CreatedAt time.Time
}

// Repository provides access to persisted accounts.
//
// Implementations must enforce email uniqueness themselves (not only rely on
// GetByEmail pre-checks): a concurrent Create with a taken email returns ErrEmailTaken.
type Repository interface {
	Create(ctx context.Context, a Account) error

	GetByID(ctx context.Context, id domain.AccountID) (Account, error)
	// GetByEmail matches case-insensitively.
	GetByEmail(ctx context.Context, email string) (Account, error)
}
