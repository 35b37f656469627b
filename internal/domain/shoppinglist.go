package domain

import "time"

// ShoppingList is a set of offers a caller chose to keep together, typically
// the clearances they plan to buy on one trip.
type ShoppingList struct {
	ID       ShoppingListID
	Owner    OwnerKey
	OfferIDs []OfferID

	CreatedAt time.Time
}
