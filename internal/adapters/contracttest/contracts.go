package contracttest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/foodwaste-kbh/clearance-api/internal/domain"
	offerrepoport "github.com/foodwaste-kbh/clearance-api/internal/ports/out/offerrepo"
	reciperepoport "github.com/foodwaste-kbh/clearance-api/internal/ports/out/reciperepo"
	shoppinglistrepoport "github.com/foodwaste-kbh/clearance-api/internal/ports/out/shoppinglistrepo"
	storerepoport "github.com/foodwaste-kbh/clearance-api/internal/ports/out/storerepo"
)

type CleanupFunc = func()

type StoreRepoFactory func(t *testing.T) (storerepoport.Repository, CleanupFunc)
type RecipeRepoFactory func(t *testing.T) (reciperepoport.Repository, CleanupFunc)
type ShoppingListRepoFactory func(t *testing.T) (shoppinglistrepoport.Repository, CleanupFunc)

// OfferRepoFactory builds an offer repository together with the store
// repository backing it, so the suite can provision stores first.
type OfferRepoFactory func(t *testing.T) (offerrepoport.Repository, storerepoport.Repository, CleanupFunc)

func RunStoreRepo(t *testing.T, newRepo StoreRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	a := domain.Store{ID: "st-a", Name: "Netto Jagtvej", Brand: "netto", Zip: "2200", City: "København N", Street: "Jagtvej 1"}
	b := domain.Store{ID: "st-b", Name: "Bilka Fields", Brand: "bilka", Zip: "2300", City: "København S", Street: "Arne Jacobsens Allé 12"}
	if err := repo.CreateBatch(ctx, []domain.Store{a, b}); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	got, err := repo.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got != a {
		t.Fatalf("GetByID roundtrip: %+v", got)
	}

	if _, err := repo.GetByID(ctx, "st-missing"); !errors.Is(err, storerepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// ID uniqueness.
	if err := repo.CreateBatch(ctx, []domain.Store{{ID: a.ID, Name: "Other", Brand: "netto", Zip: "2200"}}); err == nil {
		t.Fatalf("expected uniqueness error")
	}
	// The failed batch must not have overwritten the original.
	got, err = repo.GetByID(ctx, a.ID)
	if err != nil || got.Name != a.Name {
		t.Fatalf("store mutated by duplicate insert: %+v err=%v", got, err)
	}

	byZip, err := repo.ListByZip(ctx, "2200")
	if err != nil {
		t.Fatalf("ListByZip: %v", err)
	}
	if len(byZip) != 1 || byZip[0].ID != a.ID {
		t.Fatalf("ListByZip: %+v", byZip)
	}

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("ListAll len=%d", len(all))
	}
	// Deterministic ordering by name.
	if all[0].Name > all[1].Name {
		t.Fatalf("ListAll not ordered: %q, %q", all[0].Name, all[1].Name)
	}
}

func RunOfferRepo(t *testing.T, newRepo OfferRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, stores, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	s1 := domain.Store{ID: "st-1", Name: "Netto Nørrebro", Brand: "netto", Zip: "2200", City: "København N", Street: "Nørrebrogade 155"}
	s2 := domain.Store{ID: "st-2", Name: "Føtex Frederiksberg", Brand: "foetex", Zip: "2000", City: "Frederiksberg", Street: "Falkoner Allé 21"}
	if err := stores.CreateBatch(ctx, []domain.Store{s1, s2}); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	t0 := time.Unix(1_700_000_000, 0).UTC()

	// Ingestion against an unknown store is rejected.
	if err := repo.SaveIngestion(ctx, offerrepoport.Ingestion{
		Record: domain.FetchRecord{ID: domain.FetchID(uuid.NewString()), StoreID: "st-missing", Created: t0},
	}); err == nil {
		t.Fatalf("expected unknown-store error")
	}

	f1 := domain.FetchRecord{ID: domain.FetchID(uuid.NewString()), StoreID: s1.ID, Created: t0}
	o1 := domain.Offer{ID: domain.OfferID(uuid.NewString()), OriginalPrice: 49.95, NewPrice: 25, Discount: 24.95, PercentDiscount: 49.9, ProductEAN: "5700000000017", FetchID: f1.ID}
	o2 := domain.Offer{ID: domain.OfferID(uuid.NewString()), OriginalPrice: 12, NewPrice: 6, Discount: 6, PercentDiscount: 50, ProductEAN: "5700000000024", FetchID: f1.ID}
	if err := repo.SaveIngestion(ctx, offerrepoport.Ingestion{
		Record: f1,
		Products: []domain.Product{
			{EAN: "5700000000017", Description: "Rugbrød", Image: "https://img.example/rugbroed.png"},
			{EAN: "5700000000024", Description: "Smør", Image: "https://img.example/smoer.png"},
		},
		Offers: []domain.Offer{o1, o2},
	}); err != nil {
		t.Fatalf("SaveIngestion: %v", err)
	}

	// NewestFetchSince honors the cutoff.
	got, err := repo.NewestFetchSince(ctx, s1.ID, t0.Add(-time.Minute))
	if err != nil {
		t.Fatalf("NewestFetchSince: %v", err)
	}
	if got.ID != f1.ID || !got.Created.Equal(t0) {
		t.Fatalf("NewestFetchSince: %+v", got)
	}
	if _, err := repo.NewestFetchSince(ctx, s1.ID, t0); !errors.Is(err, offerrepoport.ErrNotFound) {
		t.Fatalf("cutoff is strict-after; got %v", err)
	}
	if _, err := repo.NewestFetchSince(ctx, s2.ID, t0.Add(-time.Minute)); !errors.Is(err, offerrepoport.ErrNotFound) {
		t.Fatalf("other store must not match; got %v", err)
	}

	// A later fetch becomes the newest one; product upsert overwrites.
	f2 := domain.FetchRecord{ID: domain.FetchID(uuid.NewString()), StoreID: s1.ID, Created: t0.Add(20 * time.Minute)}
	o3 := domain.Offer{ID: domain.OfferID(uuid.NewString()), OriginalPrice: 49.95, NewPrice: 20, Discount: 29.95, PercentDiscount: 60, ProductEAN: "5700000000017", FetchID: f2.ID}
	if err := repo.SaveIngestion(ctx, offerrepoport.Ingestion{
		Record:   f2,
		Products: []domain.Product{{EAN: "5700000000017", Description: "Rugbrød, skiveskåret", Image: "https://img.example/rugbroed2.png"}},
		Offers:   []domain.Offer{o3},
	}); err != nil {
		t.Fatalf("SaveIngestion f2: %v", err)
	}

	got, err = repo.NewestFetchSince(ctx, s1.ID, t0.Add(-time.Minute))
	if err != nil || got.ID != f2.ID {
		t.Fatalf("newest should be f2: %+v err=%v", got, err)
	}

	ds, err := repo.ListOffersByFetch(ctx, f1.ID)
	if err != nil {
		t.Fatalf("ListOffersByFetch: %v", err)
	}
	if len(ds) != 2 {
		t.Fatalf("offers for f1: %d", len(ds))
	}
	if ds[0].Offer.ID != o1.ID || ds[1].Offer.ID != o2.ID {
		t.Fatalf("insertion order not preserved: %+v", ds)
	}
	// Upserted description is visible through the old fetch too.
	if ds[0].Product.Description != "Rugbrød, skiveskåret" {
		t.Fatalf("product not upserted: %+v", ds[0].Product)
	}

	d, err := repo.GetOffer(ctx, o2.ID)
	if err != nil {
		t.Fatalf("GetOffer: %v", err)
	}
	if d.Offer.ID != o2.ID || d.Product.Description != "Smør" {
		t.Fatalf("GetOffer detail: %+v", d)
	}
	if _, err := repo.GetOffer(ctx, "missing"); !errors.Is(err, offerrepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Counts.
	sc, err := repo.CountFetchesByStore(ctx)
	if err != nil {
		t.Fatalf("CountFetchesByStore: %v", err)
	}
	if len(sc) != 1 || sc[0].StoreID != s1.ID || sc[0].Count != 2 || sc[0].StoreName != s1.Name {
		t.Fatalf("CountFetchesByStore: %+v", sc)
	}
	zc, err := repo.CountFetchesByZip(ctx)
	if err != nil {
		t.Fatalf("CountFetchesByZip: %v", err)
	}
	if len(zc) != 1 || zc[0].Zip != "2200" || zc[0].Count != 2 {
		t.Fatalf("CountFetchesByZip: %+v", zc)
	}
	pc, err := repo.CountOffersByProduct(ctx)
	if err != nil {
		t.Fatalf("CountOffersByProduct: %v", err)
	}
	if len(pc) != 2 || pc[0].EAN != "5700000000017" || pc[0].Count != 2 {
		t.Fatalf("CountOffersByProduct: %+v", pc)
	}

	// A fetch with zero offers is a valid, queryable record.
	f3 := domain.FetchRecord{ID: domain.FetchID(uuid.NewString()), StoreID: s2.ID, Created: t0}
	if err := repo.SaveIngestion(ctx, offerrepoport.Ingestion{Record: f3}); err != nil {
		t.Fatalf("empty ingestion: %v", err)
	}
	ds, err = repo.ListOffersByFetch(ctx, f3.ID)
	if err != nil || len(ds) != 0 {
		t.Fatalf("empty fetch offers: %v %v", ds, err)
	}
}

func RunRecipeRepo(t *testing.T, newRepo RecipeRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	now := time.Unix(1_700_000_000, 0).UTC()
	r1 := domain.Recipe{
		ID:        domain.RecipeID(uuid.NewString()),
		Owner:     "client-a",
		Title:     "Rugbrødsmadder",
		Body:      "<h3 id=\"recipe-heading\">Rugbrødsmadder</h3>",
		OfferIDs:  []domain.OfferID{"of-1", "of-2"},
		CreatedAt: now,
	}
	if err := repo.Create(ctx, r1); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, r1); !errors.Is(err, reciperepoport.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	got, err := repo.GetByID(ctx, r1.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Title != r1.Title || got.Owner != r1.Owner || len(got.OfferIDs) != 2 {
		t.Fatalf("roundtrip: %+v", got)
	}

	r2 := domain.Recipe{ID: domain.RecipeID(uuid.NewString()), Owner: "client-a", Title: "Smørrebrød", CreatedAt: now.Add(time.Minute)}
	r3 := domain.Recipe{ID: domain.RecipeID(uuid.NewString()), Owner: "client-b", Title: "Other", CreatedAt: now}
	if err := repo.Create(ctx, r2); err != nil {
		t.Fatalf("Create r2: %v", err)
	}
	if err := repo.Create(ctx, r3); err != nil {
		t.Fatalf("Create r3: %v", err)
	}

	mine, err := repo.ListByOwner(ctx, "client-a")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(mine) != 2 || mine[0].ID != r1.ID || mine[1].ID != r2.ID {
		t.Fatalf("ListByOwner ordering: %+v", mine)
	}

	// Save overwrites.
	r1.Body = "updated"
	if err := repo.Save(ctx, r1); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, _ = repo.GetByID(ctx, r1.ID)
	if got.Body != "updated" {
		t.Fatalf("Save did not persist: %+v", got)
	}
	if err := repo.Save(ctx, domain.Recipe{ID: "missing"}); !errors.Is(err, reciperepoport.ErrNotFound) {
		t.Fatalf("Save missing: %v", err)
	}

	if err := repo.Delete(ctx, r2.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, r2.ID); !errors.Is(err, reciperepoport.ErrNotFound) {
		t.Fatalf("Delete twice: %v", err)
	}
}

func RunShoppingListRepo(t *testing.T, newRepo ShoppingListRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	now := time.Unix(1_700_000_000, 0).UTC()
	l1 := domain.ShoppingList{
		ID:        domain.ShoppingListID(uuid.NewString()),
		Owner:     "client-a",
		OfferIDs:  []domain.OfferID{"of-1", "of-2"},
		CreatedAt: now,
	}
	if err := repo.Create(ctx, l1); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, l1); !errors.Is(err, shoppinglistrepoport.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	got, err := repo.GetByID(ctx, l1.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Owner != l1.Owner || len(got.OfferIDs) != 2 || got.OfferIDs[0] != "of-1" {
		t.Fatalf("roundtrip: %+v", got)
	}
	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, shoppinglistrepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	l2 := domain.ShoppingList{ID: domain.ShoppingListID(uuid.NewString()), Owner: "client-a", CreatedAt: now.Add(time.Minute)}
	l3 := domain.ShoppingList{ID: domain.ShoppingListID(uuid.NewString()), Owner: "client-b", OfferIDs: []domain.OfferID{"of-3"}, CreatedAt: now}
	if err := repo.Create(ctx, l2); err != nil {
		t.Fatalf("Create l2: %v", err)
	}
	if err := repo.Create(ctx, l3); err != nil {
		t.Fatalf("Create l3: %v", err)
	}

	mine, err := repo.ListByOwner(ctx, "client-a")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(mine) != 2 || mine[0].ID != l1.ID || mine[1].ID != l2.ID {
		t.Fatalf("ListByOwner ordering: %+v", mine)
	}

	if err := repo.Delete(ctx, l2.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, l2.ID); !errors.Is(err, shoppinglistrepoport.ErrNotFound) {
		t.Fatalf("Delete twice: %v", err)
	}
}
