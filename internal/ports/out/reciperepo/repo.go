package reciperepo

import (
	"context"

	"github.com/foodwaste-kbh/clearance-api/internal/domain"
)

// Repository provides access to persisted recipes.
//
// Result ordering expectations:
// - ListByOwner returns recipes ordered by CreatedAt ascending, then ID.
type Repository interface {
	Create(ctx context.Context, r domain.Recipe) error
	Save(ctx context.Context, r domain.Recipe) error

	GetByID(ctx context.Context, id domain.RecipeID) (domain.Recipe, error)

	ListByOwner(ctx context.Context, owner domain.OwnerKey) ([]domain.Recipe, error)

	Delete(ctx context.Context, id domain.RecipeID) error
}
