package accountrepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Overland-East-Bay/ride-hail-api/internal/domain"
	"github.com/Overland-East-Bay/ride-hail-api/internal/ports/out/accountrepo"
)

func TestRepo_ReturnsClones(t *testing.T) {
	t.Parallel()

	r := NewRepo()
	plate := "AAA9999"
	a := accountrepo.Account{
		ID:         domain.AccountID("a1"),
		Name:       "John Doe",
		Email:      "john@example.com",
		NationalID: "97456321558",
		CarPlate:   &plate,
		IsDriver:   true,
		CreatedAt:  time.Unix(100, 0).UTC(),
	}
	if err := r.Create(context.Background(), a); err != nil {
		t.Fatalf("Create() err=%v", err)
	}
	plate = "ZZZ0000"

	got, err := r.GetByID(context.Background(), "a1")
	if err != nil {
		t.Fatalf("GetByID() err=%v", err)
	}
	if got.CarPlate == nil || *got.CarPlate != "AAA9999" {
		t.Fatalf("CarPlate=%v, want AAA9999", got.CarPlate)
	}
	*got.CarPlate = "BBB1111"

	again, _ := r.GetByID(context.Background(), "a1")
	if *again.CarPlate != "AAA9999" {
		t.Fatalf("stored record mutated through returned value: %q", *again.CarPlate)
	}
}

func TestRepo_Create_EmptyIDRejected(t *testing.T) {
	t.Parallel()

	r := NewRepo()
	err := r.Create(context.Background(), accountrepo.Account{Email: "x@example.com"})
	if !errors.Is(err, accountrepo.ErrAlreadyExists) {
		t.Fatalf("err=%v, want ErrAlreadyExists", err)
	}
}
