package accountrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/Overland-East-Bay/ride-hail-api/internal/adapters/postgres"
	"github.com/Overland-East-Bay/ride-hail-api/internal/domain"
	"github.com/Overland-East-Bay/ride-hail-api/internal/ports/out/accountrepo"
)

// Repo is a Postgres implementation of accountrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, a accountrepo.Account) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(a.ID))
	if err != nil {
		return fmt.Errorf("invalid account id: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO accounts (
			account_id,
			name,
			email,
			national_id,
			car_plate,
			is_passenger,
			is_driver,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		id,
		a.Name,
		strings.TrimSpace(a.Email),
		a.NationalID,
		a.CarPlate,
		a.IsPassenger,
		a.IsDriver,
		a.CreatedAt.UTC(),
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			switch pe.ConstraintName {
			case postgres.AccountsEmailUniqueConstraint:
				return accountrepo.ErrEmailTaken
			case postgres.AccountsPrimaryKeyConstraint:
				return accountrepo.ErrAlreadyExists
			}
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.AccountID) (accountrepo.Account, error) {
	if r.pool == nil {
		return accountrepo.Account{}, errors.New("nil postgres pool")
	}
	uid, err := uuid.Parse(string(id))
	if err != nil {
		// Not a UUID, so it cannot name a stored account.
		return accountrepo.Account{}, accountrepo.ErrNotFound
	}
	row := r.pool.QueryRow(ctx, selectAccount+` WHERE account_id = $1`, uid)
	return scanAccount(row)
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (accountrepo.Account, error) {
	if r.pool == nil {
		return accountrepo.Account{}, errors.New("nil postgres pool")
	}
	row := r.pool.QueryRow(ctx, selectAccount+` WHERE lower(email) = lower($1)`, strings.TrimSpace(email))
	return scanAccount(row)
}

// --- helpers ---

const selectAccount = `
	SELECT
		account_id,
		name,
		email,
		national_id,
		car_plate,
		is_passenger,
		is_driver,
		created_at
	FROM accounts`

func scanAccount(row pgx.Row) (accountrepo.Account, error) {
	var (
		id          uuid.UUID
		name        string
		email       string
		nationalID  string
		carPlate    *string
		isPassenger bool
		isDriver    bool
		createdAt   time.Time
	)
	if err := row.Scan(
		&id,
		&name,
		&email,
		&nationalID,
		&carPlate,
		&isPassenger,
		&isDriver,
		&createdAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return accountrepo.Account{}, accountrepo.ErrNotFound
		}
		return accountrepo.Account{}, err
	}
	return accountrepo.Account{
		ID:          domain.AccountID(id.String()),
		Name:        name,
		Email:       email,
		NationalID:  nationalID,
		CarPlate:    carPlate,
		IsPassenger: isPassenger,
		IsDriver:    isDriver,
		CreatedAt:   createdAt.UTC(),
	}, nil
}
