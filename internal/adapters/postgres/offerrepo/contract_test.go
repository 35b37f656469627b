package offerrepo

import (
	"testing"

	"github.com/foodwaste-kbh/clearance-api/internal/adapters/contracttest"
	pgstorerepo "github.com/foodwaste-kbh/clearance-api/internal/adapters/postgres/storerepo"
	"github.com/foodwaste-kbh/clearance-api/internal/adapters/postgres/testutil"
	offerrepoport "github.com/foodwaste-kbh/clearance-api/internal/ports/out/offerrepo"
	storerepoport "github.com/foodwaste-kbh/clearance-api/internal/ports/out/storerepo"
)

func TestContract_PostgresOfferRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunOfferRepo(t, func(t *testing.T) (offerrepoport.Repository, storerepoport.Repository, func()) {
		t.Helper()
		return NewRepo(pool), pgstorerepo.NewRepo(pool), nil
	})
}
