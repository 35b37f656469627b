package shoppinglistrepo

import (
	"testing"

	"github.com/foodwaste-kbh/clearance-api/internal/adapters/contracttest"
	"github.com/foodwaste-kbh/clearance-api/internal/adapters/postgres/testutil"
	shoppinglistrepoport "github.com/foodwaste-kbh/clearance-api/internal/ports/out/shoppinglistrepo"
)

func TestContract_PostgresShoppingListRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunShoppingListRepo(t, func(t *testing.T) (shoppinglistrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(pool), nil
	})
}
