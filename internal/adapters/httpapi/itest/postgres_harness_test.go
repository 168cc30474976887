//go:build integration

package itest

import (
	"testing"
	"time"

	pgaccountrepo "github.com/Overland-East-Bay/ride-hail-api/internal/adapters/postgres/accountrepo"
	pgidempotency "github.com/Overland-East-Bay/ride-hail-api/internal/adapters/postgres/idempotency"
	pgriderepo "github.com/Overland-East-Bay/ride-hail-api/internal/adapters/postgres/riderepo"
	postgres_testutil "github.com/Overland-East-Bay/ride-hail-api/internal/adapters/postgres/testutil"
)

func init() {
	openPostgresStores = func(t *testing.T) stores {
		t.Helper()
		pool := postgres_testutil.OpenMigratedPool(t)
		return stores{
			accounts: pgaccountrepo.NewRepo(pool),
			rides:    pgriderepo.NewRepo(pool),
			idem:     pgidempotency.NewStore(pool, 24*time.Hour),
		}
	}
}
