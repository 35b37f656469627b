package stores

import (
	"context"
	"errors"
	"log/slog"
	"regexp"

	"github.com/foodwaste-kbh/clearance-api/internal/domain"
	"github.com/foodwaste-kbh/clearance-api/internal/ports/out/offerprovider"
	"github.com/foodwaste-kbh/clearance-api/internal/ports/out/storerepo"
)

// wantedBrands are the provider brands served by this API. The provider also
// lists brands without food-waste data; those are dropped on ingest.
var wantedBrands = map[string]bool{
	"netto":  true,
	"bilka":  true,
	"foetex": true,
}

var zipPattern = regexp.MustCompile(`^\d{4}$`)

// Service resolves stores by zip code, lazily populating storage from the
// external provider the first time a zip code is seen.
type Service struct {
	stores   storerepo.Repository
	provider offerprovider.Provider
	log      *slog.Logger
}

func NewService(stores storerepo.Repository, provider offerprovider.Provider, log *slog.Logger) *Service {
	return &Service{stores: stores, provider: provider, log: log}
}

// LookupByZip returns the stores for a Danish zip code. Zip codes never seen
// before trigger a provider fetch; already-known stores are never overwritten.
func (s *Service) LookupByZip(ctx context.Context, zip string) ([]domain.Store, error) {
	if !zipPattern.MatchString(zip) {
		return nil, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid zip code", Details: map[string]any{"zipcode": "must be four digits"}}
	}

	known, err := s.stores.ListByZip(ctx, zip)
	if err != nil {
		return nil, err
	}
	if len(known) > 0 {
		return known, nil
	}

	fetched, err := s.provider.FetchStoresByZip(ctx, zip)
	if err != nil {
		s.log.Warn("store fetch failed", "zip", zip, "err", err)
		if errors.Is(err, offerprovider.ErrUpstreamUnavailable) || errors.Is(err, offerprovider.ErrMalformedResponse) {
			return nil, &Error{Status: 502, Code: "UPSTREAM_UNAVAILABLE", Message: "store provider unavailable"}
		}
		return nil, err
	}

	candidates := make([]domain.Store, 0, len(fetched))
	for _, st := range fetched {
		if wantedBrands[st.Brand] {
			candidates = append(candidates, st)
		}
	}

	all, err := s.stores.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	fresh := domain.FilterNewStores(candidates, all)
	if len(fresh) > 0 {
		if err := s.stores.CreateBatch(ctx, fresh); err != nil {
			// A concurrent lookup for the same zip may have won the insert.
			if !errors.Is(err, storerepo.ErrAlreadyExists) {
				return nil, err
			}
		}
		s.log.Info("stores ingested", "zip", zip, "count", len(fresh))
	}

	return s.stores.ListByZip(ctx, zip)
}

// GetByID returns one store.
func (s *Service) GetByID(ctx context.Context, id domain.StoreID) (domain.Store, error) {
	st, err := s.stores.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storerepo.ErrNotFound) {
			return domain.Store{}, &Error{Status: 404, Code: "STORE_NOT_FOUND", Message: "store not found"}
		}
		return domain.Store{}, err
	}
	return st, nil
}
