package storerepo

import (
	"context"
	"sort"
	"sync"

	"github.com/foodwaste-kbh/clearance-api/internal/domain"
	"github.com/foodwaste-kbh/clearance-api/internal/ports/out/storerepo"
)

// Repo is an in-memory implementation of storerepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu   sync.RWMutex
	byID map[domain.StoreID]domain.Store
}

func NewRepo() *Repo {
	return &Repo{
		byID: make(map[domain.StoreID]domain.Store),
	}
}

func (r *Repo) CreateBatch(ctx context.Context, stores []domain.Store) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range stores {
		if s.ID == "" {
			return storerepo.ErrAlreadyExists
		}
		if _, ok := r.byID[s.ID]; ok {
			return storerepo.ErrAlreadyExists
		}
	}
	for _, s := range stores {
		r.byID[s.ID] = s
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.StoreID) (domain.Store, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[id]
	if !ok {
		return domain.Store{}, storerepo.ErrNotFound
	}
	return s, nil
}

func (r *Repo) ListByZip(ctx context.Context, zip string) ([]domain.Store, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Store, 0)
	for _, s := range r.byID {
		if s.Zip == zip {
			out = append(out, s)
		}
	}
	sortStores(out)
	return out, nil
}

func (r *Repo) ListAll(ctx context.Context) ([]domain.Store, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Store, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	sortStores(out)
	return out, nil
}

func sortStores(ss []domain.Store) {
	sort.Slice(ss, func(i, j int) bool {
		if ss[i].Name != ss[j].Name {
			return ss[i].Name < ss[j].Name
		}
		return ss[i].ID < ss[j].ID
	})
}
