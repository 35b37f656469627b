package shoppinglistrepo

import (
	"context"

	"github.com/foodwaste-kbh/clearance-api/internal/domain"
)

// Repository provides access to persisted shopping lists.
//
// Result ordering expectations:
// - ListByOwner returns lists ordered by CreatedAt ascending, then ID.
type Repository interface {
	Create(ctx context.Context, l domain.ShoppingList) error

	GetByID(ctx context.Context, id domain.ShoppingListID) (domain.ShoppingList, error)

	ListByOwner(ctx context.Context, owner domain.OwnerKey) ([]domain.ShoppingList, error)

	Delete(ctx context.Context, id domain.ShoppingListID) error
}
