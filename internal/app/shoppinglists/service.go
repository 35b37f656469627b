package shoppinglists

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/foodwaste-kbh/clearance-api/internal/domain"
	"github.com/foodwaste-kbh/clearance-api/internal/ports/out/clock"
	"github.com/foodwaste-kbh/clearance-api/internal/ports/out/offerrepo"
	"github.com/foodwaste-kbh/clearance-api/internal/ports/out/shoppinglistrepo"
)

// ListWithOffers is a shopping list expanded with the offers it references,
// each joined with its product.
type ListWithOffers struct {
	List   domain.ShoppingList
	Offers []offerrepo.OfferDetail
}

// Service manages saved shopping lists. Lists are scoped to the owner key
// that created them.
type Service struct {
	lists  shoppinglistrepo.Repository
	offers offerrepo.Repository
	clk    clock.Clock
	log    *slog.Logger

	newListID func() domain.ShoppingListID
}

func NewService(lists shoppinglistrepo.Repository, offers offerrepo.Repository, clk clock.Clock, log *slog.Logger) *Service {
	return &Service{
		lists:  lists,
		offers: offers,
		clk:    clk,
		log:    log,
		newListID: func() domain.ShoppingListID {
			return domain.ShoppingListID(uuid.NewString())
		},
	}
}

// SetNewListIDForTest overrides list ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewListIDForTest(fn func() domain.ShoppingListID) {
	if fn != nil {
		s.newListID = fn
	}
}

// Save persists a shopping list for the owner, validating that every
// referenced offer exists.
func (s *Service) Save(ctx context.Context, owner domain.OwnerKey, offerIDs []domain.OfferID) (domain.ShoppingList, error) {
	if len(offerIDs) == 0 {
		return domain.ShoppingList{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid offer list", Details: map[string]any{"offerIds": "must be non-empty"}}
	}
	for _, id := range offerIDs {
		if _, err := s.offers.GetOffer(ctx, id); err != nil {
			if errors.Is(err, offerrepo.ErrNotFound) {
				return domain.ShoppingList{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "unknown offer", Details: map[string]any{"offerIds": string(id)}}
			}
			return domain.ShoppingList{}, err
		}
	}

	l := domain.ShoppingList{
		ID:        s.newListID(),
		Owner:     owner,
		OfferIDs:  append([]domain.OfferID(nil), offerIDs...),
		CreatedAt: s.clk.Now(),
	}
	if err := s.lists.Create(ctx, l); err != nil {
		return domain.ShoppingList{}, err
	}
	s.log.Info("shopping list saved", "list_id", l.ID, "offers", len(l.OfferIDs))
	return l, nil
}

// ListByOwner returns the owner's shopping lists, oldest first, with their
// offers expanded.
func (s *Service) ListByOwner(ctx context.Context, owner domain.OwnerKey) ([]ListWithOffers, error) {
	lists, err := s.lists.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	out := make([]ListWithOffers, 0, len(lists))
	for _, l := range lists {
		details := make([]offerrepo.OfferDetail, 0, len(l.OfferIDs))
		for _, id := range l.OfferIDs {
			d, err := s.offers.GetOffer(ctx, id)
			if err != nil {
				return nil, err
			}
			details = append(details, d)
		}
		out = append(out, ListWithOffers{List: l, Offers: details})
	}
	return out, nil
}

// Delete removes one of the owner's shopping lists. A list owned by someone
// else reads as not found.
func (s *Service) Delete(ctx context.Context, owner domain.OwnerKey, id domain.ShoppingListID) error {
	l, err := s.lists.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shoppinglistrepo.ErrNotFound) {
			return &Error{Status: 404, Code: "SHOPPING_LIST_NOT_FOUND", Message: "shopping list not found"}
		}
		return err
	}
	if l.Owner != owner {
		// Existence is not leaked across owners.
		return &Error{Status: 404, Code: "SHOPPING_LIST_NOT_FOUND", Message: "shopping list not found"}
	}
	return s.lists.Delete(ctx, id)
}
