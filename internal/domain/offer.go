package domain

import "time"

// FreshnessTTL is the window after a fetch during which its offers are served
// from storage instead of triggering a new provider call.
const FreshnessTTL = 15 * time.Minute

// Product is a product observed in a clearance. Products are upserted by EAN;
// the latest ingestion wins for description and image.
type Product struct {
	EAN         EAN
	Description string
	Image       string
}

// Offer is one clearance price for a product, tied to the fetch that observed
// it. Offers are immutable; newer fetches supersede them, they are never
// updated in place. Prices are copied verbatim from the provider, including
// inconsistent or negative discount values.
type Offer struct {
	ID              OfferID
	OriginalPrice   float64
	NewPrice        float64
	Discount        float64
	PercentDiscount float64
	ProductEAN      EAN
	FetchID         FetchID
}

// FetchRecord marks one completed round-trip to the clearance provider for one
// store. It anchors the freshness window for the offers it retrieved.
type FetchRecord struct {
	ID      FetchID
	StoreID StoreID
	Created time.Time
}

// Expires returns the instant at which the record's freshness window closes.
func (r FetchRecord) Expires() time.Time {
	return r.Created.Add(FreshnessTTL)
}

// FreshAt reports whether the record is still inside its freshness window at t.
func (r FetchRecord) FreshAt(t time.Time) bool {
	return t.Sub(r.Created) < FreshnessTTL
}
