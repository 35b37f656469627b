package httpapi_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/foodwaste-kbh/clearance-api/internal/adapters/httpapi"
	memofferrepo "github.com/foodwaste-kbh/clearance-api/internal/adapters/memory/offerrepo"
	memreciperepo "github.com/foodwaste-kbh/clearance-api/internal/adapters/memory/reciperepo"
	memshoppinglistrepo "github.com/foodwaste-kbh/clearance-api/internal/adapters/memory/shoppinglistrepo"
	memstorerepo "github.com/foodwaste-kbh/clearance-api/internal/adapters/memory/storerepo"
	"github.com/foodwaste-kbh/clearance-api/internal/app/offers"
	"github.com/foodwaste-kbh/clearance-api/internal/app/recipes"
	"github.com/foodwaste-kbh/clearance-api/internal/app/shoppinglists"
	"github.com/foodwaste-kbh/clearance-api/internal/app/stores"
	"github.com/foodwaste-kbh/clearance-api/internal/domain"
	"github.com/foodwaste-kbh/clearance-api/internal/platform/ratelimit"
	"github.com/foodwaste-kbh/clearance-api/internal/ports/out/offerprovider"
	"github.com/foodwaste-kbh/clearance-api/internal/ports/out/recipegen"
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

type fakeProvider struct {
	mu             sync.Mutex
	clearanceCalls int
	stores         []domain.Store
	clearances     []offerprovider.Clearance
}

func (p *fakeProvider) FetchClearances(ctx context.Context, storeID domain.StoreID) ([]offerprovider.Clearance, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clearanceCalls++
	return p.clearances, nil
}

func (p *fakeProvider) FetchStoresByZip(ctx context.Context, zip string) ([]domain.Store, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stores, nil
}

type fakeGateway struct{}

func (fakeGateway) Generate(ctx context.Context, ingredients string) (recipegen.Result, error) {
	return recipegen.Result{Body: "<h3 id=\"recipe-heading\">Opskrift</h3>", TokensUsed: 321}, nil
}

type fixture struct {
	handler  http.Handler
	clk      *fakeClock
	provider *fakeProvider
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := &fakeClock{now: time.Unix(1000, 0).UTC()}
	provider := &fakeProvider{
		stores: []domain.Store{
			{ID: "s1", Name: "Netto Noerrebrogade", Brand: "netto", Zip: "2200", City: "Koebenhavn N", Street: "Noerrebrogade 155"},
			{ID: "x1", Name: "Salling Aarhus", Brand: "salling", Zip: "2200", City: "Aarhus", Street: "Soendergade 27"},
		},
		clearances: []offerprovider.Clearance{
			{EAN: "5700000000017", Description: "Rugbroed", Image: "img", OriginalPrice: 36, NewPrice: 12, Discount: 24, PercentDiscount: 66.67},
		},
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	storeRepo := memstorerepo.NewRepo()
	offerRepo := memofferrepo.NewRepo(storeRepo)
	recipeRepo := memreciperepo.NewRepo()
	listRepo := memshoppinglistrepo.NewRepo()

	srv := httpapi.NewServer(
		stores.NewService(storeRepo, provider, log),
		offers.NewService(storeRepo, offerRepo, provider, clk, log),
		recipes.NewService(recipeRepo, offerRepo, fakeGateway{}, ratelimit.NewStore(), ratelimit.NewMemoryStats(), clk, log),
		shoppinglists.NewService(listRepo, offerRepo, clk, log),
	)
	return &fixture{handler: httpapi.NewRouter(srv), clk: clk, provider: provider}
}

func (f *fixture) do(t *testing.T, method, target, clientKey, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	req.RemoteAddr = "127.0.0.1:52000"
	if clientKey != "" {
		req.Header.Set("X-Client-Key", clientKey)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestGetStores_IngestsAndFiltersBrands(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/stores?zipcode=2200", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var got []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0]["id"] != "s1" || got[0]["brand"] != "netto" {
		t.Fatalf("stores = %v", got)
	}
}

func TestGetStores_InvalidZip(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/stores?zipcode=abc", "", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q", body.Error.Code)
	}
}

func TestGetClearances_CacheHeaderAndFreshness(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	if rec := f.do(t, http.MethodGet, "/api/stores?zipcode=2200", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("seed stores: %d", rec.Code)
	}

	rec := f.do(t, http.MethodGet, "/api/stores/clearance?id=s1", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if rec.Header().Get("X-Cache") != "MISS" {
		t.Errorf("first call X-Cache = %q, want MISS", rec.Header().Get("X-Cache"))
	}

	rec = f.do(t, http.MethodGet, "/api/stores/clearance?id=s1", "", "")
	if rec.Header().Get("X-Cache") != "HIT" {
		t.Errorf("second call X-Cache = %q, want HIT", rec.Header().Get("X-Cache"))
	}

	f.clk.Advance(16 * time.Minute)
	rec = f.do(t, http.MethodGet, "/api/stores/clearance?id=s1", "", "")
	if rec.Header().Get("X-Cache") != "MISS" {
		t.Errorf("stale call X-Cache = %q, want MISS", rec.Header().Get("X-Cache"))
	}

	var got []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("clearances = %v", got)
	}
}

func TestGetClearances_UnknownStore(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/stores/clearance?id=missing", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestGenerateRecipe_RateLimited(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	body := `{"ingredients": "skyr, rugbroed"}`

	for i := 0; i < 3; i++ {
		rec := f.do(t, http.MethodPost, "/api/recipes", "client-a", body)
		if rec.Code != http.StatusOK {
			t.Fatalf("call %d: status = %d, body = %s", i+1, rec.Code, rec.Body)
		}
		var got map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got["tokensUsed"] != float64(321) {
			t.Errorf("tokensUsed = %v", got["tokensUsed"])
		}
	}

	rec := f.do(t, http.MethodPost, "/api/recipes", "client-a", body)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("4th call: status = %d, want 429", rec.Code)
	}

	// Other clients keep their own budget.
	rec = f.do(t, http.MethodPost, "/api/recipes", "client-b", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("other client: status = %d", rec.Code)
	}
}

func TestRecipeCRUDFlow(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	// Make an offer exist so it can be referenced.
	if rec := f.do(t, http.MethodGet, "/api/stores?zipcode=2200", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("seed stores: %d", rec.Code)
	}
	rec := f.do(t, http.MethodGet, "/api/stores/clearance?id=s1", "", "")
	var clearances []struct {
		Offer struct {
			ID string `json:"id"`
		} `json:"offer"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &clearances); err != nil {
		t.Fatalf("decode clearances: %v", err)
	}
	offerID := clearances[0].Offer.ID

	rec = f.do(t, http.MethodPost, "/api/recipes/save-recipe", "client-a",
		`{"title": "Skyr med bær", "body": "<h3>...</h3>", "offerIds": ["`+offerID+`"]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("save: status = %d, body = %s", rec.Code, rec.Body)
	}
	var saved struct {
		ID       string   `json:"id"`
		OfferIDs []string `json:"offerIds"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &saved); err != nil {
		t.Fatalf("decode saved: %v", err)
	}
	if len(saved.OfferIDs) != 1 || saved.OfferIDs[0] != offerID {
		t.Fatalf("saved = %+v", saved)
	}

	// Listing is owner-scoped.
	rec = f.do(t, http.MethodGet, "/api/recipes", "client-b", "")
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("other owner sees recipes: %s", body)
	}

	// Patch title only; null offerIds clears them.
	rec = f.do(t, http.MethodPatch, "/api/recipes/"+saved.ID, "client-a",
		`{"title": "Ny titel", "offerIds": null}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch: status = %d, body = %s", rec.Code, rec.Body)
	}
	var patched struct {
		Title    string   `json:"title"`
		Body     string   `json:"body"`
		OfferIDs []string `json:"offerIds"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &patched); err != nil {
		t.Fatalf("decode patched: %v", err)
	}
	if patched.Title != "Ny titel" || patched.Body != "<h3>...</h3>" || len(patched.OfferIDs) != 0 {
		t.Fatalf("patched = %+v", patched)
	}

	// Cross-owner delete reads as not found.
	if rec := f.do(t, http.MethodDelete, "/api/recipes/"+saved.ID, "client-b", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("cross-owner delete: status = %d", rec.Code)
	}
	if rec := f.do(t, http.MethodDelete, "/api/recipes/"+saved.ID, "client-a", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status = %d", rec.Code)
	}
}

func TestShoppingListFlow(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	// Make an offer exist so it can be referenced.
	if rec := f.do(t, http.MethodGet, "/api/stores?zipcode=2200", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("seed stores: %d", rec.Code)
	}
	rec := f.do(t, http.MethodGet, "/api/stores/clearance?id=s1", "", "")
	var clearances []struct {
		Offer struct {
			ID string `json:"id"`
		} `json:"offer"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &clearances); err != nil {
		t.Fatalf("decode clearances: %v", err)
	}
	offerID := clearances[0].Offer.ID

	rec = f.do(t, http.MethodPost, "/api/shopping-list/save-shopping-list", "client-a",
		`{"offerIds": ["`+offerID+`"]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("save: status = %d, body = %s", rec.Code, rec.Body)
	}
	var saved struct {
		ID       string   `json:"id"`
		OfferIDs []string `json:"offerIds"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &saved); err != nil {
		t.Fatalf("decode saved: %v", err)
	}
	if len(saved.OfferIDs) != 1 || saved.OfferIDs[0] != offerID {
		t.Fatalf("saved = %+v", saved)
	}

	// An unknown offer is rejected.
	if rec := f.do(t, http.MethodPost, "/api/shopping-list/save-shopping-list", "client-a",
		`{"offerIds": ["missing"]}`); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unknown offer: status = %d", rec.Code)
	}

	// Listing is owner-scoped and expands offers with their products.
	rec = f.do(t, http.MethodGet, "/api/shopping-list", "client-a", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status = %d", rec.Code)
	}
	var lists []struct {
		ID     string `json:"id"`
		Offers []struct {
			Offer struct {
				ID string `json:"id"`
			} `json:"offer"`
			Product struct {
				Description string `json:"description"`
			} `json:"product"`
		} `json:"offers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &lists); err != nil {
		t.Fatalf("decode lists: %v", err)
	}
	if len(lists) != 1 || len(lists[0].Offers) != 1 || lists[0].Offers[0].Offer.ID != offerID {
		t.Fatalf("lists = %+v", lists)
	}
	if lists[0].Offers[0].Product.Description != "Rugbroed" {
		t.Fatalf("product not expanded: %+v", lists[0].Offers[0])
	}
	rec = f.do(t, http.MethodGet, "/api/shopping-list", "client-b", "")
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("other owner sees lists: %s", body)
	}

	// Cross-owner delete reads as not found.
	if rec := f.do(t, http.MethodDelete, "/api/shopping-list/"+saved.ID, "client-b", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("cross-owner delete: status = %d", rec.Code)
	}
	if rec := f.do(t, http.MethodDelete, "/api/shopping-list/"+saved.ID, "client-a", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status = %d", rec.Code)
	}
}

func TestCountEndpoints(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	if rec := f.do(t, http.MethodGet, "/api/stores?zipcode=2200", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("seed stores: %d", rec.Code)
	}
	f.do(t, http.MethodGet, "/api/stores/clearance?id=s1", "", "")
	f.clk.Advance(16 * time.Minute)
	f.do(t, http.MethodGet, "/api/stores/clearance?id=s1", "", "")

	rec := f.do(t, http.MethodGet, "/api/stores/countstorecalls", "", "")
	var storeCounts []struct {
		StoreID string `json:"storeId"`
		Count   int64  `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &storeCounts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(storeCounts) != 1 || storeCounts[0].StoreID != "s1" || storeCounts[0].Count != 2 {
		t.Fatalf("store counts = %+v", storeCounts)
	}

	rec = f.do(t, http.MethodGet, "/api/stores/countzipcodecalls", "", "")
	var zipCounts []struct {
		Zipcode string `json:"zipcode"`
		Count   int64  `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &zipCounts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(zipCounts) != 1 || zipCounts[0].Zipcode != "2200" || zipCounts[0].Count != 2 {
		t.Fatalf("zip counts = %+v", zipCounts)
	}

	rec = f.do(t, http.MethodGet, "/api/products/count", "", "")
	var productCounts []struct {
		EAN   string `json:"ean"`
		Count int64  `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &productCounts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(productCounts) != 1 || productCounts[0].EAN != "5700000000017" || productCounts[0].Count != 2 {
		t.Fatalf("product counts = %+v", productCounts)
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
