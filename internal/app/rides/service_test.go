package rides_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memaccountrepo "github.com/Overland-East-Bay/ride-hail-api/internal/adapters/memory/accountrepo"
	memclock "github.com/Overland-East-Bay/ride-hail-api/internal/adapters/memory/clock"
	memevents "github.com/Overland-East-Bay/ride-hail-api/internal/adapters/memory/events"
	memriderepo "github.com/Overland-East-Bay/ride-hail-api/internal/adapters/memory/riderepo"
	"github.com/Overland-East-Bay/ride-hail-api/internal/app/rides"
	"github.com/Overland-East-Bay/ride-hail-api/internal/domain"
	"github.com/Overland-East-Bay/ride-hail-api/internal/platform/logger"
	"github.com/Overland-East-Bay/ride-hail-api/internal/platform/metrics"
	"github.com/Overland-East-Bay/ride-hail-api/internal/ports/out/accountrepo"
	"github.com/Overland-East-Bay/ride-hail-api/internal/ports/out/events"
	"github.com/Overland-East-Bay/ride-hail-api/internal/ports/out/riderepo"
)

var epoch = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

var (
	newYork     = domain.Coordinate{Lat: 40.712776, Long: -74.005974}
	losAngeles  = domain.Coordinate{Lat: 34.052235, Long: -118.243683}
	plateDriver = "AAA9999"
)

type fixture struct {
	accounts *memaccountrepo.Repo
	rides    *memriderepo.Repo
	clk      *memclock.ManualClock
	svc      *rides.Service
}

func newFixture(t *testing.T, opts ...rides.Option) fixture {
	t.Helper()
	f := fixture{
		accounts: memaccountrepo.NewRepo(),
		rides:    memriderepo.NewRepo(),
		clk:      memclock.NewManualClock(epoch),
	}
	opts = append([]rides.Option{rides.WithLogger(logger.Discard())}, opts...)
	f.svc = rides.NewService(f.rides, f.accounts, f.clk, opts...)
	return f
}

func (f fixture) provision(t *testing.T, id domain.AccountID, passenger bool) {
	t.Helper()
	a := accountrepo.Account{
		ID:          id,
		Name:        "Account " + string(id),
		Email:       string(id) + "@example.com",
		NationalID:  "97456321558",
		IsPassenger: passenger,
		IsDriver:    !passenger,
		CreatedAt:   epoch,
	}
	if !passenger {
		a.CarPlate = &plateDriver
	}
	if err := f.accounts.Create(context.Background(), a); err != nil {
		t.Fatalf("create account: %v", err)
	}
}

func TestService_RequestRide_Succeeds(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.provision(t, "p1", true)

	id, err := f.svc.RequestRide(context.Background(), rides.RequestRideInput{AccountID: "p1", From: newYork, To: losAngeles})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, ok, err := f.svc.GetRide(context.Background(), id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, domain.AccountID("p1"), got.PassengerID)
	assert.Equal(t, domain.RideStatusRequested, got.Status)
	assert.Equal(t, newYork, got.From)
	assert.Equal(t, losAngeles, got.To)
	assert.True(t, got.Date.Equal(epoch))
}

func TestService_RequestRide_AccountNotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.svc.RequestRide(context.Background(), rides.RequestRideInput{AccountID: "ghost", From: newYork, To: losAngeles})
	require.ErrorIs(t, err, rides.ErrAccountNotFound)

	var appErr *rides.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.Status)
}

func TestService_RequestRide_NotAPassenger(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.provision(t, "d1", false)

	minted := false
	f.svc.SetNewRideIDForTest(func() domain.RideID {
		minted = true
		return "r-unused"
	})
	_, err := f.svc.RequestRide(context.Background(), rides.RequestRideInput{AccountID: "d1", From: newYork, To: losAngeles})
	require.ErrorIs(t, err, rides.ErrNotAPassenger)
	assert.False(t, minted)
}

func TestService_RequestRide_OngoingRideUntilCompleted(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.provision(t, "p1", true)

	first, err := f.svc.RequestRide(context.Background(), rides.RequestRideInput{AccountID: "p1", From: newYork, To: losAngeles})
	require.NoError(t, err)

	_, err = f.svc.RequestRide(context.Background(), rides.RequestRideInput{AccountID: "p1", From: newYork, To: losAngeles})
	require.ErrorIs(t, err, rides.ErrOngoingRideExists)

	// Every status other than completed keeps the passenger busy.
	for _, st := range []domain.RideStatus{domain.RideStatusAccepted, domain.RideStatusInProgress, domain.RideStatusCancelled} {
		require.NoError(t, f.rides.UpdateStatus(context.Background(), first, st))
		_, err = f.svc.RequestRide(context.Background(), rides.RequestRideInput{AccountID: "p1", From: newYork, To: losAngeles})
		require.ErrorIs(t, err, rides.ErrOngoingRideExists, "status %s", st)
	}

	require.NoError(t, f.rides.UpdateStatus(context.Background(), first, domain.RideStatusCompleted))
	f.clk.Advance(time.Hour)
	second, err := f.svc.RequestRide(context.Background(), rides.RequestRideInput{AccountID: "p1", From: losAngeles, To: newYork})
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	got, ok, err := f.svc.GetRide(context.Background(), second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Date.Equal(epoch.Add(time.Hour)))
}

func TestService_RequestRide_ConcurrentAdmitsOne(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.provision(t, "p1", true)

	const n = 32
	var wg sync.WaitGroup
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.RequestRide(context.Background(), rides.RequestRideInput{AccountID: "p1", From: newYork, To: losAngeles})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	ok := 0
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		require.ErrorIs(t, err, rides.ErrOngoingRideExists)
	}
	assert.Equal(t, 1, ok)
}

// racingRides reports no active ride, then loses the insert race.
type racingRides struct {
	riderepo.Repository
	createErr error
}

func (r racingRides) FindActiveByPassenger(context.Context, domain.AccountID) (riderepo.Ride, error) {
	return riderepo.Ride{}, riderepo.ErrNotFound
}

func (r racingRides) Create(context.Context, riderepo.Ride) error {
	return r.createErr
}

func TestService_RequestRide_StoreConflictMapsToOngoing(t *testing.T) {
	t.Parallel()

	accounts := memaccountrepo.NewRepo()
	f := fixture{accounts: accounts}
	f.provision(t, "p1", true)
	svc := rides.NewService(racingRides{createErr: riderepo.ErrActiveRideExists}, accounts, memclock.NewManualClock(epoch), rides.WithLogger(logger.Discard()))

	_, err := svc.RequestRide(context.Background(), rides.RequestRideInput{AccountID: "p1"})
	require.ErrorIs(t, err, rides.ErrOngoingRideExists)
}

// countingAccounts counts lookups by id.
type countingAccounts struct {
	accountrepo.Repository
	mu    sync.Mutex
	calls int
}

func (c *countingAccounts) GetByID(ctx context.Context, id domain.AccountID) (accountrepo.Account, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.Repository.GetByID(ctx, id)
}

func TestService_RequestRide_FetchesAccountOnce(t *testing.T) {
	t.Parallel()

	base := memaccountrepo.NewRepo()
	f := fixture{accounts: base}
	f.provision(t, "p1", true)
	counting := &countingAccounts{Repository: base}
	svc := rides.NewService(memriderepo.NewRepo(), counting, memclock.NewManualClock(epoch), rides.WithLogger(logger.Discard()))

	_, err := svc.RequestRide(context.Background(), rides.RequestRideInput{AccountID: "p1", From: newYork, To: losAngeles})
	require.NoError(t, err)
	assert.Equal(t, 1, counting.calls)
}

func TestService_RequestRide_StoreFailurePropagates(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	accounts := memaccountrepo.NewRepo()
	f := fixture{accounts: accounts}
	f.provision(t, "p1", true)
	svc := rides.NewService(racingRides{createErr: boom}, accounts, memclock.NewManualClock(epoch), rides.WithLogger(logger.Discard()))

	_, err := svc.RequestRide(context.Background(), rides.RequestRideInput{AccountID: "p1"})
	require.ErrorIs(t, err, boom)
}

func TestService_RequestRide_PublishesEventAndMetrics(t *testing.T) {
	t.Parallel()

	rec := memevents.NewRecorder()
	m := metrics.New(prometheus.NewRegistry())
	f := newFixture(t, rides.WithPublisher(rec), rides.WithMetrics(m))
	f.provision(t, "p1", true)
	f.svc.SetNewRideIDForTest(func() domain.RideID { return "r1" })

	_, err := f.svc.RequestRide(context.Background(), rides.RequestRideInput{AccountID: "p1", From: newYork, To: losAngeles})
	require.NoError(t, err)
	_, err = f.svc.RequestRide(context.Background(), rides.RequestRideInput{AccountID: "p1", From: newYork, To: losAngeles})
	require.Error(t, err)

	got := rec.OfType(events.TypeRideRequested)
	require.Len(t, got, 1)
	assert.Equal(t, "r1", got[0].AggregateID)
	assert.Equal(t, rides.RequestedPayload{
		RideID:      "r1",
		PassengerID: "p1",
		FromLat:     newYork.Lat,
		FromLong:    newYork.Long,
		ToLat:       losAngeles.Lat,
		ToLong:      losAngeles.Long,
	}, got[0].Payload)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RideRequests.WithLabelValues(metrics.OutcomeAccepted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RideRequests.WithLabelValues("ONGOING_RIDE_EXISTS")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues("ride.requested", "ok")))
}

func TestService_GetRide_NotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, ok, err := f.svc.GetRide(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
