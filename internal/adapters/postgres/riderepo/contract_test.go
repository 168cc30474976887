//go:build integration

package riderepo

import (
	"testing"

	"github.com/Overland-East-Bay/ride-hail-api/internal/adapters/contracttest"
	pgaccountrepo "github.com/Overland-East-Bay/ride-hail-api/internal/adapters/postgres/accountrepo"
	"github.com/Overland-East-Bay/ride-hail-api/internal/adapters/postgres/testutil"
	accountrepoport "github.com/Overland-East-Bay/ride-hail-api/internal/ports/out/accountrepo"
	riderepoport "github.com/Overland-East-Bay/ride-hail-api/internal/ports/out/riderepo"
)

func TestContract_PostgresRideRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunRideRepo(t,
		func(t *testing.T) (accountrepoport.Repository, func()) {
			t.Helper()
			return pgaccountrepo.NewRepo(pool), nil
		},
		func(t *testing.T) (riderepoport.Repository, func()) {
			t.Helper()
			return NewRepo(pool), nil
		},
	)
}
