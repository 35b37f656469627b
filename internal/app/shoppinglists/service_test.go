package shoppinglists_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	memofferrepo "github.com/foodwaste-kbh/clearance-api/internal/adapters/memory/offerrepo"
	memshoppinglistrepo "github.com/foodwaste-kbh/clearance-api/internal/adapters/memory/shoppinglistrepo"
	memstorerepo "github.com/foodwaste-kbh/clearance-api/internal/adapters/memory/storerepo"
	"github.com/foodwaste-kbh/clearance-api/internal/app/shoppinglists"
	"github.com/foodwaste-kbh/clearance-api/internal/domain"
	offerrepoport "github.com/foodwaste-kbh/clearance-api/internal/ports/out/offerrepo"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	svc *shoppinglists.Service
	clk *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := &fakeClock{now: time.Unix(1000, 0).UTC()}
	stores := memstorerepo.NewRepo()
	offerStore := memofferrepo.NewRepo(stores)
	listStore := memshoppinglistrepo.NewRepo()

	if err := stores.CreateBatch(context.Background(), []domain.Store{
		{ID: "s1", Name: "Netto", Brand: "netto", Zip: "2200", City: "KBH", Street: "Gade 1"},
	}); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	if err := offerStore.SaveIngestion(context.Background(), offerrepoport.Ingestion{
		Record: domain.FetchRecord{ID: "f1", StoreID: "s1", Created: clk.Now()},
		Products: []domain.Product{
			{EAN: "1", Description: "Skyr", Image: ""},
			{EAN: "2", Description: "Rugbrød", Image: ""},
		},
		Offers: []domain.Offer{
			{ID: "o1", NewPrice: 10, ProductEAN: "1", FetchID: "f1"},
			{ID: "o2", NewPrice: 12, ProductEAN: "2", FetchID: "f1"},
		},
	}); err != nil {
		t.Fatalf("seed offers: %v", err)
	}

	svc := shoppinglists.NewService(
		listStore, offerStore, clk,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	n := 0
	svc.SetNewListIDForTest(func() domain.ShoppingListID {
		n++
		return domain.ShoppingListID([]string{"l1", "l2", "l3"}[n-1])
	})
	return &fixture{svc: svc, clk: clk}
}

func TestSave_PersistsAndExpandsOffers(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	l, err := f.svc.Save(ctx, "owner-a", []domain.OfferID{"o1", "o2"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if l.ID != "l1" || l.Owner != "owner-a" || len(l.OfferIDs) != 2 {
		t.Fatalf("list = %+v", l)
	}

	listed, err := f.svc.ListByOwner(ctx, "owner-a")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(listed) != 1 || listed[0].List.ID != "l1" {
		t.Fatalf("listed = %+v", listed)
	}
	if len(listed[0].Offers) != 2 || listed[0].Offers[0].Product.Description != "Skyr" {
		t.Fatalf("offers not expanded: %+v", listed[0].Offers)
	}
}

func TestSave_UnknownOfferRejected(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.svc.Save(context.Background(), "owner-a", []domain.OfferID{"o1", "missing"})
	var appErr *shoppinglists.Error
	if !errors.As(err, &appErr) || appErr.Status != 422 {
		t.Fatalf("err = %v, want 422", err)
	}
}

func TestSave_EmptyOfferListRejected(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.svc.Save(context.Background(), "owner-a", nil)
	var appErr *shoppinglists.Error
	if !errors.As(err, &appErr) || appErr.Status != 422 {
		t.Fatalf("err = %v, want 422", err)
	}
}

func TestListByOwner_IsOwnerScoped(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Save(ctx, "owner-a", []domain.OfferID{"o1"}); err != nil {
		t.Fatalf("Save a: %v", err)
	}
	f.clk.Advance(time.Minute)
	if _, err := f.svc.Save(ctx, "owner-a", []domain.OfferID{"o2"}); err != nil {
		t.Fatalf("Save a2: %v", err)
	}
	if _, err := f.svc.Save(ctx, "owner-b", []domain.OfferID{"o2"}); err != nil {
		t.Fatalf("Save b: %v", err)
	}

	mine, err := f.svc.ListByOwner(ctx, "owner-a")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(mine) != 2 || mine[0].List.ID != "l1" || mine[1].List.ID != "l2" {
		t.Fatalf("listed = %+v", mine)
	}
	if other, _ := f.svc.ListByOwner(ctx, "owner-c"); len(other) != 0 {
		t.Fatalf("unexpected lists for fresh owner: %+v", other)
	}
}

func TestDelete_OwnerScoped(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Save(ctx, "owner-a", []domain.OfferID{"o1"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	err := f.svc.Delete(ctx, "owner-b", "l1")
	var appErr *shoppinglists.Error
	if !errors.As(err, &appErr) || appErr.Status != 404 {
		t.Fatalf("cross-owner delete: err = %v, want 404", err)
	}

	if err := f.svc.Delete(ctx, "owner-a", "l1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if listed, _ := f.svc.ListByOwner(ctx, "owner-a"); len(listed) != 0 {
		t.Fatalf("list still present: %+v", listed)
	}
}
