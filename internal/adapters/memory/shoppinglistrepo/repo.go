package shoppinglistrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/foodwaste-kbh/clearance-api/internal/domain"
	"github.com/foodwaste-kbh/clearance-api/internal/ports/out/shoppinglistrepo"
)

// Repo is an in-memory implementation of shoppinglistrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu   sync.RWMutex
	byID map[domain.ShoppingListID]domain.ShoppingList
}

func NewRepo() *Repo {
	return &Repo{
		byID: make(map[domain.ShoppingListID]domain.ShoppingList),
	}
}

func (r *Repo) Create(ctx context.Context, l domain.ShoppingList) error {
	_ = ctx
	if l.ID == "" {
		return shoppinglistrepo.ErrAlreadyExists
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[l.ID]; ok {
		return shoppinglistrepo.ErrAlreadyExists
	}
	r.byID[l.ID] = cloneList(l)
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.ShoppingListID) (domain.ShoppingList, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.byID[id]
	if !ok {
		return domain.ShoppingList{}, shoppinglistrepo.ErrNotFound
	}
	return cloneList(l), nil
}

func (r *Repo) ListByOwner(ctx context.Context, owner domain.OwnerKey) ([]domain.ShoppingList, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ShoppingList, 0)
	for _, l := range r.byID {
		if l.Owner == owner {
			out = append(out, cloneList(l))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, id domain.ShoppingListID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return shoppinglistrepo.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func cloneList(l domain.ShoppingList) domain.ShoppingList {
	cp := l
	if l.OfferIDs != nil {
		cp.OfferIDs = append([]domain.OfferID(nil), l.OfferIDs...)
	}
	return cp
}
