package riderepo

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Overland-East-Bay/ride-hail-api/internal/domain"
	"github.com/Overland-East-Bay/ride-hail-api/internal/ports/out/riderepo"
)

func TestRepo_Create_ConcurrentActiveRidesForOnePassenger(t *testing.T) {
	t.Parallel()

	r := NewRepo()
	const goroutines = 50

	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		conflicts atomic.Int32
	)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := r.Create(context.Background(), riderepo.Ride{
				ID:          domain.RideID(uuid.NewString()),
				PassengerID: "p1",
				Status:      domain.RideStatusRequested,
				Date:        time.Unix(100, 0).UTC(),
			})
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, riderepo.ErrActiveRideExists):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	if successes.Load() != 1 {
		t.Fatalf("successes=%d, want 1", successes.Load())
	}
	if conflicts.Load() != goroutines-1 {
		t.Fatalf("conflicts=%d, want %d", conflicts.Load(), goroutines-1)
	}
}

func TestRepo_UpdateStatus_ReleasesAndReclaimsSlot(t *testing.T) {
	t.Parallel()

	r := NewRepo()
	ctx := context.Background()
	first := riderepo.Ride{ID: "r1", PassengerID: "p1", Status: domain.RideStatusRequested}
	second := riderepo.Ride{ID: "r2", PassengerID: "p1", Status: domain.RideStatusRequested}

	if err := r.Create(ctx, first); err != nil {
		t.Fatalf("Create(first) err=%v", err)
	}
	if err := r.UpdateStatus(ctx, "r1", domain.RideStatusCompleted); err != nil {
		t.Fatalf("UpdateStatus(completed) err=%v", err)
	}
	if err := r.Create(ctx, second); err != nil {
		t.Fatalf("Create(second) err=%v", err)
	}
	// Re-opening the completed ride would give the passenger two active rides.
	if err := r.UpdateStatus(ctx, "r1", domain.RideStatusAccepted); !errors.Is(err, riderepo.ErrActiveRideExists) {
		t.Fatalf("UpdateStatus(reopen) err=%v, want ErrActiveRideExists", err)
	}
	if err := r.UpdateStatus(ctx, "missing", domain.RideStatusCompleted); !errors.Is(err, riderepo.ErrNotFound) {
		t.Fatalf("UpdateStatus(missing) err=%v, want ErrNotFound", err)
	}
}
