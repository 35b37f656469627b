package storerepo

import (
	"context"

	"github.com/foodwaste-kbh/clearance-api/internal/domain"
)

// Repository provides access to persisted stores.
//
// Stores are write-once: they are inserted when first observed from the
// external provider and never updated. Uniqueness is enforced on the
// provider-assigned ID.
//
// Result ordering expectations:
// - ListByZip returns stores ordered by name ascending to keep behavior deterministic.
type Repository interface {
	// CreateBatch inserts the given stores. Inserting an ID that already
	// exists returns ErrAlreadyExists; callers are expected to have filtered
	// candidates with domain.FilterNewStores first.
	CreateBatch(ctx context.Context, stores []domain.Store) error

	GetByID(ctx context.Context, id domain.StoreID) (domain.Store, error)

	ListByZip(ctx context.Context, zip string) ([]domain.Store, error)

	// ListAll returns every persisted store. Used to build the known set for
	// deduplication of provider batches.
	ListAll(ctx context.Context) ([]domain.Store, error)
}
