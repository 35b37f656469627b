package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/foodwaste-kbh/clearance-api/internal/adapters/contracttest"
	offerrepoport "github.com/foodwaste-kbh/clearance-api/internal/ports/out/offerrepo"
	reciperepoport "github.com/foodwaste-kbh/clearance-api/internal/ports/out/reciperepo"
	shoppinglistrepoport "github.com/foodwaste-kbh/clearance-api/internal/ports/out/shoppinglistrepo"
	storerepoport "github.com/foodwaste-kbh/clearance-api/internal/ports/out/storerepo"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestContract_SQLiteStoreRepo(t *testing.T) {
	contracttest.RunStoreRepo(t, func(t *testing.T) (storerepoport.Repository, func()) {
		t.Helper()
		return NewStoreRepo(openTestDB(t)), nil
	})
}

func TestContract_SQLiteOfferRepo(t *testing.T) {
	contracttest.RunOfferRepo(t, func(t *testing.T) (offerrepoport.Repository, storerepoport.Repository, func()) {
		t.Helper()
		db := openTestDB(t)
		return NewOfferRepo(db), NewStoreRepo(db), nil
	})
}

func TestContract_SQLiteRecipeRepo(t *testing.T) {
	contracttest.RunRecipeRepo(t, func(t *testing.T) (reciperepoport.Repository, func()) {
		t.Helper()
		return NewRecipeRepo(openTestDB(t)), nil
	})
}

func TestContract_SQLiteShoppingListRepo(t *testing.T) {
	contracttest.RunShoppingListRepo(t, func(t *testing.T) (shoppinglistrepoport.Repository, func()) {
		t.Helper()
		return NewShoppingListRepo(openTestDB(t)), nil
	})
}
