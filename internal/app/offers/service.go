package offers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/foodwaste-kbh/clearance-api/internal/domain"
	"github.com/foodwaste-kbh/clearance-api/internal/ports/out/clock"
	"github.com/foodwaste-kbh/clearance-api/internal/ports/out/offerprovider"
	"github.com/foodwaste-kbh/clearance-api/internal/ports/out/offerrepo"
	"github.com/foodwaste-kbh/clearance-api/internal/ports/out/storerepo"
)

// Service serves clearance offers for stores, refreshing from the external
// provider only when the stored snapshot for a store is older than the
// freshness window.
type Service struct {
	stores   storerepo.Repository
	offers   offerrepo.Repository
	provider offerprovider.Provider
	clk      clock.Clock
	log      *slog.Logger

	// refresh collapses concurrent misses for the same store into one
	// provider call.
	refresh singleflight.Group

	newFetchID func() domain.FetchID
	newOfferID func() domain.OfferID
}

func NewService(stores storerepo.Repository, offers offerrepo.Repository, provider offerprovider.Provider, clk clock.Clock, log *slog.Logger) *Service {
	return &Service{
		stores:   stores,
		offers:   offers,
		provider: provider,
		clk:      clk,
		log:      log,
		newFetchID: func() domain.FetchID {
			return domain.FetchID(uuid.NewString())
		},
		newOfferID: func() domain.OfferID {
			return domain.OfferID(uuid.NewString())
		},
	}
}

// SetNewFetchIDForTest overrides fetch ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewFetchIDForTest(fn func() domain.FetchID) {
	if fn != nil {
		s.newFetchID = fn
	}
}

// SetNewOfferIDForTest overrides offer ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewOfferIDForTest(fn func() domain.OfferID) {
	if fn != nil {
		s.newOfferID = fn
	}
}

// GetClearances returns the current clearances for the store, from storage
// when a fetch younger than domain.FreshnessTTL exists, otherwise from a new
// provider round-trip. The bool reports whether the answer was served from
// storage. A provider round-trip that returns no clearances is still recorded;
// "this store has nothing on clearance" is a cacheable answer. A failed
// round-trip records nothing, so the next call retries immediately.
func (s *Service) GetClearances(ctx context.Context, storeID domain.StoreID) ([]offerrepo.OfferDetail, bool, error) {
	if _, err := s.stores.GetByID(ctx, storeID); err != nil {
		if errors.Is(err, storerepo.ErrNotFound) {
			return nil, false, &Error{Status: 404, Code: "STORE_NOT_FOUND", Message: "store not found"}
		}
		return nil, false, err
	}

	now := s.clk.Now()

	rec, err := s.offers.NewestFetchSince(ctx, storeID, now.Add(-domain.FreshnessTTL))
	switch {
	case err == nil && rec.FreshAt(now):
		s.log.Debug("serving clearances from storage", "store_id", storeID, "fetch_id", rec.ID, "fresh_until", rec.Expires())
		details, err := s.offers.ListOffersByFetch(ctx, rec.ID)
		return details, true, err
	case err != nil && !errors.Is(err, offerrepo.ErrNotFound):
		return nil, false, err
	}

	v, err, _ := s.refresh.Do(string(storeID), func() (any, error) {
		return s.refreshStore(ctx, storeID)
	})
	if err != nil {
		return nil, false, err
	}
	return v.([]offerrepo.OfferDetail), false, nil
}

// refreshStore runs inside the single-flight group. A caller that lost the
// race to a just-finished flight would miss the fresh record, so freshness is
// re-checked before going upstream.
func (s *Service) refreshStore(ctx context.Context, storeID domain.StoreID) ([]offerrepo.OfferDetail, error) {
	now := s.clk.Now()

	rec, err := s.offers.NewestFetchSince(ctx, storeID, now.Add(-domain.FreshnessTTL))
	switch {
	case err == nil && rec.FreshAt(now):
		return s.offers.ListOffersByFetch(ctx, rec.ID)
	case err != nil && !errors.Is(err, offerrepo.ErrNotFound):
		return nil, err
	}

	clearances, err := s.provider.FetchClearances(ctx, storeID)
	if err != nil {
		s.log.Warn("provider fetch failed", "store_id", storeID, "err", err)
		switch {
		case errors.Is(err, offerprovider.ErrMalformedResponse):
			return nil, &Error{Status: 502, Code: "UPSTREAM_MALFORMED", Message: "offer provider returned malformed response"}
		case errors.Is(err, offerprovider.ErrUpstreamUnavailable):
			return nil, &Error{Status: 502, Code: "UPSTREAM_UNAVAILABLE", Message: "offer provider unavailable"}
		}
		return nil, err
	}

	ing := s.buildIngestion(storeID, now, clearances)
	if err := s.offers.SaveIngestion(ctx, ing); err != nil {
		return nil, err
	}
	s.log.Info("ingested clearances", "store_id", storeID, "fetch_id", ing.Record.ID, "offers", len(ing.Offers))

	return s.offers.ListOffersByFetch(ctx, ing.Record.ID)
}

func (s *Service) buildIngestion(storeID domain.StoreID, now time.Time, clearances []offerprovider.Clearance) offerrepo.Ingestion {
	rec := domain.FetchRecord{
		ID:      s.newFetchID(),
		StoreID: storeID,
		Created: now,
	}

	seen := make(map[domain.EAN]int)
	products := make([]domain.Product, 0, len(clearances))
	offers := make([]domain.Offer, 0, len(clearances))
	for _, cl := range clearances {
		p := domain.Product{EAN: cl.EAN, Description: cl.Description, Image: cl.Image}
		if i, ok := seen[cl.EAN]; ok {
			products[i] = p
		} else {
			seen[cl.EAN] = len(products)
			products = append(products, p)
		}
		offers = append(offers, domain.Offer{
			ID:              s.newOfferID(),
			OriginalPrice:   cl.OriginalPrice,
			NewPrice:        cl.NewPrice,
			Discount:        cl.Discount,
			PercentDiscount: cl.PercentDiscount,
			ProductEAN:      cl.EAN,
			FetchID:         rec.ID,
		})
	}

	return offerrepo.Ingestion{Record: rec, Products: products, Offers: offers}
}

// GetOffer returns a single offer, joined with its product, by ID.
func (s *Service) GetOffer(ctx context.Context, id domain.OfferID) (offerrepo.OfferDetail, error) {
	d, err := s.offers.GetOffer(ctx, id)
	if err != nil {
		if errors.Is(err, offerrepo.ErrNotFound) {
			return offerrepo.OfferDetail{}, &Error{Status: 404, Code: "OFFER_NOT_FOUND", Message: "offer not found"}
		}
		return offerrepo.OfferDetail{}, err
	}
	return d, nil
}

// Usage reporting passthroughs.

func (s *Service) CountFetchesByStore(ctx context.Context) ([]offerrepo.StoreFetchCount, error) {
	return s.offers.CountFetchesByStore(ctx)
}

func (s *Service) CountFetchesByZip(ctx context.Context) ([]offerrepo.ZipFetchCount, error) {
	return s.offers.CountFetchesByZip(ctx)
}

func (s *Service) CountOffersByProduct(ctx context.Context) ([]offerrepo.ProductOfferCount, error) {
	return s.offers.CountOffersByProduct(ctx)
}
