package contracttest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Overland-East-Bay/ride-hail-api/internal/domain"
	accountrepoport "github.com/Overland-East-Bay/ride-hail-api/internal/ports/out/accountrepo"
	idempotencyport "github.com/Overland-East-Bay/ride-hail-api/internal/ports/out/idempotency"
	riderepoport "github.com/Overland-East-Bay/ride-hail-api/internal/ports/out/riderepo"
)

type CleanupFunc = func()

type AccountRepoFactory func(t *testing.T) (accountrepoport.Repository, CleanupFunc)
type RideRepoFactory func(t *testing.T) (riderepoport.Repository, CleanupFunc)
type IdemStoreFactory func(t *testing.T) (idempotencyport.Store, CleanupFunc)

func RunIdempotencyStore(t *testing.T, newStore IdemStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	fp := idempotencyport.Fingerprint{
		Key:      idempotencyport.Key("k-" + uuid.NewString()),
		Method:   "POST",
		Route:    "/signup",
		BodyHash: "hash-abc",
	}
	if _, ok, err := store.Get(ctx, fp); err != nil || ok {
		t.Fatalf("Get before Put: ok=%v err=%v, want ok=false", ok, err)
	}

	rec := idempotencyport.Record{
		StatusCode:  201,
		ContentType: "application/json",
		Body:        []byte(`{"accountId":"a-1"}`),
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
	if err := store.Put(ctx, fp, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get(ctx, fp)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if string(got.Body) != `{"accountId":"a-1"}` || got.ContentType != "application/json" || got.StatusCode != 201 {
		t.Fatalf("unexpected record: %+v", got)
	}

	// A different body hash under the same key is a different fingerprint.
	other := fp
	other.BodyHash = "hash-def"
	if _, ok, err := store.Get(ctx, other); err != nil || ok {
		t.Fatalf("Get other hash: ok=%v err=%v, want ok=false", ok, err)
	}

	// Overwrite semantics.
	rec2 := rec
	rec2.Body = []byte(`{"accountId":"a-2"}`)
	if err := store.Put(ctx, fp, rec2); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, ok, err = store.Get(ctx, fp)
	if err != nil || !ok || string(got.Body) != `{"accountId":"a-2"}` {
		t.Fatalf("expected overwritten record, got ok=%v err=%v body=%q", ok, err, string(got.Body))
	}
}

func RunAccountRepo(t *testing.T, newRepo AccountRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	now := time.Unix(1000, 0).UTC()
	suffix := uuid.NewString()[:8]
	plate := "AAA9999"
	driver := accountrepoport.Account{
		ID:          domain.AccountID(uuid.NewString()),
		Name:        "John Doe",
		Email:       "john.doe." + suffix + "@example.com",
		NationalID:  "97456321558",
		CarPlate:    &plate,
		IsPassenger: false,
		IsDriver:    true,
		CreatedAt:   now,
	}
	if err := repo.Create(ctx, driver); err != nil {
		t.Fatalf("Create driver: %v", err)
	}

	got, err := repo.GetByID(ctx, driver.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != driver.Name || got.Email != driver.Email || got.NationalID != driver.NationalID {
		t.Fatalf("GetByID=%+v, want %+v", got, driver)
	}
	if got.CarPlate == nil || *got.CarPlate != plate || !got.IsDriver || got.IsPassenger {
		t.Fatalf("GetByID flags/plate mismatch: %+v", got)
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("CreatedAt=%v, want %v", got.CreatedAt, now)
	}

	byEmail, err := repo.GetByEmail(ctx, strings.ToUpper(driver.Email))
	if err != nil {
		t.Fatalf("GetByEmail (case-insensitive): %v", err)
	}
	if byEmail.ID != driver.ID {
		t.Fatalf("GetByEmail id=%q, want %q", byEmail.ID, driver.ID)
	}

	if _, err := repo.GetByID(ctx, domain.AccountID(uuid.NewString())); !errors.Is(err, accountrepoport.ErrNotFound) {
		t.Fatalf("GetByID missing err=%v, want ErrNotFound", err)
	}
	if _, err := repo.GetByEmail(ctx, "nobody."+suffix+"@example.com"); !errors.Is(err, accountrepoport.ErrNotFound) {
		t.Fatalf("GetByEmail missing err=%v, want ErrNotFound", err)
	}

	// Email uniqueness is enforced by the store, not only by callers.
	err = repo.Create(ctx, accountrepoport.Account{
		ID:          domain.AccountID(uuid.NewString()),
		Name:        "Jane Doe",
		Email:       strings.ToUpper(driver.Email),
		NationalID:  "71428793860",
		IsPassenger: true,
		CreatedAt:   now,
	})
	if !errors.Is(err, accountrepoport.ErrEmailTaken) {
		t.Fatalf("Create duplicate email err=%v, want ErrEmailTaken", err)
	}

	// National IDs are not unique.
	passenger := accountrepoport.Account{
		ID:          domain.AccountID(uuid.NewString()),
		Name:        "Jane Roe",
		Email:       "jane.roe." + suffix + "@example.com",
		NationalID:  driver.NationalID,
		IsPassenger: true,
		CreatedAt:   now,
	}
	if err := repo.Create(ctx, passenger); err != nil {
		t.Fatalf("Create passenger sharing national id: %v", err)
	}
	got, err = repo.GetByID(ctx, passenger.ID)
	if err != nil {
		t.Fatalf("GetByID passenger: %v", err)
	}
	if got.CarPlate != nil {
		t.Fatalf("CarPlate=%v, want nil", *got.CarPlate)
	}

	if err := repo.Create(ctx, passenger); err == nil {
		t.Fatalf("expected error creating the same account twice")
	}
}

// RunRideRepo exercises ride persistence and the one-active-ride rule; rides
// reference accounts, so passengers are seeded through the account repository.
func RunRideRepo(t *testing.T, newAccountRepo AccountRepoFactory, newRideRepo RideRepoFactory) {
	t.Helper()
	ctx := context.Background()

	accounts, aCleanup := newAccountRepo(t)
	if aCleanup != nil {
		t.Cleanup(aCleanup)
	}
	rides, rCleanup := newRideRepo(t)
	if rCleanup != nil {
		t.Cleanup(rCleanup)
	}

	now := time.Unix(2000, 0).UTC()
	passengerID := domain.AccountID(uuid.NewString())
	if err := accounts.Create(ctx, accountrepoport.Account{
		ID:          passengerID,
		Name:        "Pat Passenger",
		Email:       "pat." + uuid.NewString()[:8] + "@example.com",
		NationalID:  "02155167024",
		IsPassenger: true,
		CreatedAt:   now,
	}); err != nil {
		t.Fatalf("seed passenger: %v", err)
	}

	if _, err := rides.FindActiveByPassenger(ctx, passengerID); !errors.Is(err, riderepoport.ErrNotFound) {
		t.Fatalf("FindActiveByPassenger before create err=%v, want ErrNotFound", err)
	}

	first := riderepoport.Ride{
		ID:          domain.RideID(uuid.NewString()),
		PassengerID: passengerID,
		Status:      domain.RideStatusRequested,
		FromLat:     40.712776,
		FromLong:    -74.005974,
		ToLat:       34.052235,
		ToLong:      -118.243683,
		Date:        now,
	}
	if err := rides.Create(ctx, first); err != nil {
		t.Fatalf("Create first: %v", err)
	}

	got, err := rides.GetByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ID != first.ID || got.PassengerID != passengerID || got.Status != domain.RideStatusRequested {
		t.Fatalf("GetByID=%+v, want %+v", got, first)
	}
	if got.FromLat != first.FromLat || got.FromLong != first.FromLong || got.ToLat != first.ToLat || got.ToLong != first.ToLong {
		t.Fatalf("coordinates mismatch: got=%+v want=%+v", got, first)
	}
	if !got.Date.Equal(now) {
		t.Fatalf("Date=%v, want %v", got.Date, now)
	}

	active, err := rides.FindActiveByPassenger(ctx, passengerID)
	if err != nil {
		t.Fatalf("FindActiveByPassenger: %v", err)
	}
	if active.ID != first.ID {
		t.Fatalf("active id=%q, want %q", active.ID, first.ID)
	}

	second := first
	second.ID = domain.RideID(uuid.NewString())
	if err := rides.Create(ctx, second); !errors.Is(err, riderepoport.ErrActiveRideExists) {
		t.Fatalf("Create second active err=%v, want ErrActiveRideExists", err)
	}

	// Cancelled rides still count as not completed.
	if err := rides.UpdateStatus(ctx, first.ID, domain.RideStatusCancelled); err != nil {
		t.Fatalf("UpdateStatus cancelled: %v", err)
	}
	if err := rides.Create(ctx, second); !errors.Is(err, riderepoport.ErrActiveRideExists) {
		t.Fatalf("Create after cancel err=%v, want ErrActiveRideExists", err)
	}

	if err := rides.UpdateStatus(ctx, first.ID, domain.RideStatusCompleted); err != nil {
		t.Fatalf("UpdateStatus completed: %v", err)
	}
	if _, err := rides.FindActiveByPassenger(ctx, passengerID); !errors.Is(err, riderepoport.ErrNotFound) {
		t.Fatalf("FindActiveByPassenger after complete err=%v, want ErrNotFound", err)
	}
	if err := rides.Create(ctx, second); err != nil {
		t.Fatalf("Create after complete: %v", err)
	}

	if _, err := rides.GetByID(ctx, domain.RideID(uuid.NewString())); !errors.Is(err, riderepoport.ErrNotFound) {
		t.Fatalf("GetByID missing err=%v, want ErrNotFound", err)
	}
	if err := rides.UpdateStatus(ctx, domain.RideID(uuid.NewString()), domain.RideStatusCompleted); !errors.Is(err, riderepoport.ErrNotFound) {
		t.Fatalf("UpdateStatus missing err=%v, want ErrNotFound", err)
	}
}
