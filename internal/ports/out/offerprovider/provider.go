package offerprovider

import (
	"context"

	"github.com/foodwaste-kbh/clearance-api/internal/domain"
)

// Clearance is one discounted listing as published by the provider. Prices are
// passed through exactly as received; the provider does not guarantee that
// NewPrice <= OriginalPrice or that discount fields are consistent.
type Clearance struct {
	EAN             domain.EAN
	Description     string
	Image           string
	OriginalPrice   float64
	NewPrice        float64
	Discount        float64
	PercentDiscount float64
}

// Provider is the external discount-data service. Calls are blocking,
// network-bound and unthrottled on the provider side; callers impose timeouts
// via ctx or the transport.
type Provider interface {
	// FetchClearances returns the current clearances for a store.
	// Failures are ErrUpstreamUnavailable or ErrMalformedResponse.
	FetchClearances(ctx context.Context, storeID domain.StoreID) ([]Clearance, error)

	// FetchStoresByZip returns the provider's stores for a zip code.
	FetchStoresByZip(ctx context.Context, zip string) ([]domain.Store, error)
}
