package offerrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/foodwaste-kbh/clearance-api/internal/domain"
	"github.com/foodwaste-kbh/clearance-api/internal/ports/out/offerrepo"
	"github.com/foodwaste-kbh/clearance-api/internal/ports/out/storerepo"
)

// Repo is an in-memory implementation of offerrepo.Repository.
// It is safe for concurrent use.
//
// The store repository is consulted on ingestion so referential integrity
// matches the durable backends, and for the zip/name joins in the count
// queries.
type Repo struct {
	mu       sync.RWMutex
	fetches  map[domain.FetchID]domain.FetchRecord
	products map[domain.EAN]domain.Product
	offers   []domain.Offer

	stores storerepo.Repository
}

func NewRepo(stores storerepo.Repository) *Repo {
	return &Repo{
		fetches:  make(map[domain.FetchID]domain.FetchRecord),
		products: make(map[domain.EAN]domain.Product),
		stores:   stores,
	}
}

func (r *Repo) SaveIngestion(ctx context.Context, ing offerrepo.Ingestion) error {
	if _, err := r.stores.GetByID(ctx, ing.Record.StoreID); err != nil {
		return offerrepo.ErrStoreUnknown
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetches[ing.Record.ID] = ing.Record
	for _, p := range ing.Products {
		r.products[p.EAN] = p
	}
	r.offers = append(r.offers, ing.Offers...)
	return nil
}

func (r *Repo) NewestFetchSince(ctx context.Context, storeID domain.StoreID, after time.Time) (domain.FetchRecord, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	var newest domain.FetchRecord
	found := false
	for _, f := range r.fetches {
		if f.StoreID != storeID || !f.Created.After(after) {
			continue
		}
		if !found || f.Created.After(newest.Created) {
			newest = f
			found = true
		}
	}
	if !found {
		return domain.FetchRecord{}, offerrepo.ErrNotFound
	}
	return newest, nil
}

func (r *Repo) ListOffersByFetch(ctx context.Context, id domain.FetchID) ([]offerrepo.OfferDetail, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]offerrepo.OfferDetail, 0)
	for _, o := range r.offers {
		if o.FetchID != id {
			continue
		}
		out = append(out, offerrepo.OfferDetail{
			Offer:   o,
			Product: r.products[o.ProductEAN],
		})
	}
	return out, nil
}

func (r *Repo) GetOffer(ctx context.Context, id domain.OfferID) (offerrepo.OfferDetail, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.offers {
		if o.ID == id {
			return offerrepo.OfferDetail{Offer: o, Product: r.products[o.ProductEAN]}, nil
		}
	}
	return offerrepo.OfferDetail{}, offerrepo.ErrNotFound
}

func (r *Repo) CountFetchesByStore(ctx context.Context) ([]offerrepo.StoreFetchCount, error) {
	r.mu.RLock()
	counts := make(map[domain.StoreID]int64)
	for _, f := range r.fetches {
		counts[f.StoreID]++
	}
	r.mu.RUnlock()

	out := make([]offerrepo.StoreFetchCount, 0, len(counts))
	for id, n := range counts {
		name := ""
		if s, err := r.stores.GetByID(ctx, id); err == nil {
			name = s.Name
		}
		out = append(out, offerrepo.StoreFetchCount{StoreID: id, StoreName: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].StoreID < out[j].StoreID
	})
	return out, nil
}

func (r *Repo) CountFetchesByZip(ctx context.Context) ([]offerrepo.ZipFetchCount, error) {
	r.mu.RLock()
	perStore := make(map[domain.StoreID]int64)
	for _, f := range r.fetches {
		perStore[f.StoreID]++
	}
	r.mu.RUnlock()

	counts := make(map[string]int64)
	for id, n := range perStore {
		s, err := r.stores.GetByID(ctx, id)
		if err != nil {
			continue
		}
		counts[s.Zip] += n
	}

	out := make([]offerrepo.ZipFetchCount, 0, len(counts))
	for zip, n := range counts {
		out = append(out, offerrepo.ZipFetchCount{Zip: zip, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Zip < out[j].Zip
	})
	return out, nil
}

func (r *Repo) CountOffersByProduct(ctx context.Context) ([]offerrepo.ProductOfferCount, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[domain.EAN]int64)
	for _, o := range r.offers {
		counts[o.ProductEAN]++
	}
	out := make([]offerrepo.ProductOfferCount, 0, len(counts))
	for ean, n := range counts {
		out = append(out, offerrepo.ProductOfferCount{
			EAN:         ean,
			Description: r.products[ean].Description,
			Count:       n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].EAN < out[j].EAN
	})
	return out, nil
}
