package domain

// StoreID is the store identifier assigned by the external provider.
// We model it as an opaque identifier: its format is controlled by the provider.
type StoreID string

// EAN is the European Article Number identifying a product.
type EAN string

// OfferID is an internal identifier for an offer record.
type OfferID string

// FetchID is an internal identifier for a fetch record.
type FetchID string

// RecipeID is an internal identifier for a recipe record.
type RecipeID string

// ShoppingListID is an internal identifier for a shopping list.
type ShoppingListID string

// OwnerKey identifies the caller owning a recipe. The HTTP edge also uses it
// as the rate-limit client key.
type OwnerKey string
