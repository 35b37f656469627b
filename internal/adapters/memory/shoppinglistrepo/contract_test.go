package shoppinglistrepo

import (
	"testing"

	"github.com/foodwaste-kbh/clearance-api/internal/adapters/contracttest"
	shoppinglistrepoport "github.com/foodwaste-kbh/clearance-api/internal/ports/out/shoppinglistrepo"
)

func TestContract_MemoryShoppingListRepo(t *testing.T) {
	contracttest.RunShoppingListRepo(t, func(t *testing.T) (shoppinglistrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(), nil
	})
}
