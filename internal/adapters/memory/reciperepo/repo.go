package reciperepo

import (
	"context"
	"sort"
	"sync"

	"github.com/foodwaste-kbh/clearance-api/internal/domain"
	"github.com/foodwaste-kbh/clearance-api/internal/ports/out/reciperepo"
)

// Repo is an in-memory implementation of reciperepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu   sync.RWMutex
	byID map[domain.RecipeID]domain.Recipe
}

func NewRepo() *Repo {
	return &Repo{
		byID: make(map[domain.RecipeID]domain.Recipe),
	}
}

func (r *Repo) Create(ctx context.Context, rec domain.Recipe) error {
	_ = ctx
	if rec.ID == "" {
		return reciperepo.ErrAlreadyExists
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[rec.ID]; ok {
		return reciperepo.ErrAlreadyExists
	}
	r.byID[rec.ID] = cloneRecipe(rec)
	return nil
}

func (r *Repo) Save(ctx context.Context, rec domain.Recipe) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[rec.ID]; !ok {
		return reciperepo.ErrNotFound
	}
	r.byID[rec.ID] = cloneRecipe(rec)
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.RecipeID) (domain.Recipe, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byID[id]
	if !ok {
		return domain.Recipe{}, reciperepo.ErrNotFound
	}
	return cloneRecipe(rec), nil
}

func (r *Repo) ListByOwner(ctx context.Context, owner domain.OwnerKey) ([]domain.Recipe, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Recipe, 0)
	for _, rec := range r.byID {
		if rec.Owner == owner {
			out = append(out, cloneRecipe(rec))
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

func (r *Repo) Delete(ctx context.Context, id domain.RecipeID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return reciperepo.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func cloneRecipe(rec domain.Recipe) domain.Recipe {
	cp := rec
	if rec.OfferIDs != nil {
		cp.OfferIDs = append([]domain.OfferID(nil), rec.OfferIDs...)
	}
	return cp
}
