//go:build integration

package accountrepo

import (
	"testing"

	"github.com/Overland-East-Bay/ride-hail-api/internal/adapters/contracttest"
	"github.com/Overland-East-Bay/ride-hail-api/internal/adapters/postgres/testutil"
	accountrepoport "github.com/Overland-East-Bay/ride-hail-api/internal/ports/out/accountrepo"
)

func TestContract_PostgresAccountRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunAccountRepo(t, func(t *testing.T) (accountrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(pool), nil
	})
}
