package reciperepo

import (
	"testing"

	"github.com/foodwaste-kbh/clearance-api/internal/adapters/contracttest"
	reciperepoport "github.com/foodwaste-kbh/clearance-api/internal/ports/out/reciperepo"
)

func TestContract_MemoryRecipeRepo(t *testing.T) {
	contracttest.RunRecipeRepo(t, func(t *testing.T) (reciperepoport.Repository, func()) {
		t.Helper()
		return NewRepo(), nil
	})
}
