package storerepo

import (
	"testing"

	"github.com/foodwaste-kbh/clearance-api/internal/adapters/contracttest"
	"github.com/foodwaste-kbh/clearance-api/internal/adapters/postgres/testutil"
	storerepoport "github.com/foodwaste-kbh/clearance-api/internal/ports/out/storerepo"
)

func TestContract_PostgresStoreRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunStoreRepo(t, func(t *testing.T) (storerepoport.Repository, func()) {
		t.Helper()
		return NewRepo(pool), nil
	})
}
