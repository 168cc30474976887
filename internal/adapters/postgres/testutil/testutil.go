//go:build integration

package testutil

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	postgres "github.com/Overland-East-Bay/ride-hail-api/internal/adapters/postgres"
)

var (
	once    sync.Once
	shared  *pgxpool.Pool
	openErr error
)

// OpenMigratedPool returns a pool on a migrated database shared by every test in the package.
//
// TEST_DATABASE_URL points the tests at an existing database; otherwise a
// throwaway Postgres container is started. Ryuk reaps the container when the
// test binary exits.
func OpenMigratedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		dsn := os.Getenv("TEST_DATABASE_URL")
		if dsn == "" {
			dsn, openErr = startContainer(ctx)
			if openErr != nil {
				return
			}
		}
		shared, openErr = postgres.NewPool(ctx, dsn, postgres.PoolOptions{MaxConns: 20, ConnectAttempts: 5, RetryInterval: time.Second})
		if openErr != nil {
			return
		}
		openErr = postgres.Migrate(ctx, shared)
	})
	if openErr != nil {
		t.Fatalf("open migrated pool: %v", openErr)
	}
	return shared
}

func startContainer(ctx context.Context) (string, error) {
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("ride_hail"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		return "", err
	}
	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return "", err
	}
	return dsn, nil
}
