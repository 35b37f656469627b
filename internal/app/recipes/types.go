package recipes

import (
	"github.com/oapi-codegen/nullable"

	"github.com/foodwaste-kbh/clearance-api/internal/domain"
)

// Generated is the outcome of one gateway call.
type Generated struct {
	Body       string
	TokensUsed int
}

type SaveInput struct {
	Title    string
	Body     string
	OfferIDs []domain.OfferID
}

// UpdateInput is a partial update. Nullable fields distinguish omitted from
// explicitly-null: omitted fields keep their value, null clears where clearing
// is allowed.
type UpdateInput struct {
	// Title is optional and cannot be null.
	Title nullable.Nullable[string]

	// Body is optional and cannot be null.
	Body nullable.Nullable[string]

	// OfferIDs is optional; null clears the list.
	OfferIDs nullable.Nullable[[]domain.OfferID]
}
