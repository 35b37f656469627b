package domain

import "time"

// Recipe is a generated recipe a caller chose to keep, referencing the offers
// it was built from.
type Recipe struct {
	ID       RecipeID
	Owner    OwnerKey
	Title    string
	Body     string
	OfferIDs []OfferID

	CreatedAt time.Time
}
