package offerrepo

import (
	"context"
	"time"

	"github.com/foodwaste-kbh/clearance-api/internal/domain"
)

// Ingestion is the unit persisted after one successful provider round-trip:
// the fetch record, the products observed (upserted by EAN) and the offers
// retrieved. It is written as one logical batch so a fetch record never
// becomes visible without its offers.
type Ingestion struct {
	Record   domain.FetchRecord
	Products []domain.Product
	Offers   []domain.Offer
}

// OfferDetail is the read model for serving clearances: an offer joined with
// its product.
type OfferDetail struct {
	Offer   domain.Offer
	Product domain.Product
}

// StoreFetchCount reports how many fetches were recorded for a store.
type StoreFetchCount struct {
	StoreID   domain.StoreID
	StoreName string
	Count     int64
}

// ZipFetchCount reports how many fetches were recorded for stores in a zip code.
type ZipFetchCount struct {
	Zip   string
	Count int64
}

// ProductOfferCount reports how often a product appeared in offers.
type ProductOfferCount struct {
	EAN         domain.EAN
	Description string
	Count       int64
}

// Repository provides access to persisted fetch records, products and offers.
//
// Result ordering expectations:
// - ListOffersByFetch returns offers in insertion order.
// - Count methods return rows ordered by count descending.
type Repository interface {
	// SaveIngestion persists the batch. Products already present are
	// overwritten (latest description/image wins); offers and the fetch
	// record are inserts. The record's store must exist.
	SaveIngestion(ctx context.Context, ing Ingestion) error

	// NewestFetchSince returns the most recent fetch record for the store
	// created strictly after the given instant, or ErrNotFound.
	NewestFetchSince(ctx context.Context, storeID domain.StoreID, after time.Time) (domain.FetchRecord, error)

	ListOffersByFetch(ctx context.Context, id domain.FetchID) ([]OfferDetail, error)

	// GetOffer returns one offer joined with its product.
	GetOffer(ctx context.Context, id domain.OfferID) (OfferDetail, error)

	CountFetchesByStore(ctx context.Context) ([]StoreFetchCount, error)
	CountFetchesByZip(ctx context.Context) ([]ZipFetchCount, error)
	CountOffersByProduct(ctx context.Context) ([]ProductOfferCount, error)
}
