package shoppinglistrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/foodwaste-kbh/clearance-api/internal/adapters/postgres"
	"github.com/foodwaste-kbh/clearance-api/internal/domain"
	"github.com/foodwaste-kbh/clearance-api/internal/ports/out/shoppinglistrepo"
)

// Repo is a Postgres implementation of shoppinglistrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, l domain.ShoppingList) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	listUUID, err := uuid.Parse(string(l.ID))
	if err != nil {
		return fmt.Errorf("invalid shopping list id: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO shopping_lists (id, owner_key, offer_ids, created_at)
		VALUES ($1,$2,$3,$4)
	`, listUUID, string(l.Owner), offerIDStrings(l.OfferIDs), l.CreatedAt.UTC())
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			return shoppinglistrepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.ShoppingListID) (domain.ShoppingList, error) {
	if r.pool == nil {
		return domain.ShoppingList{}, errors.New("nil postgres pool")
	}
	listUUID, err := uuid.Parse(string(id))
	if err != nil {
		return domain.ShoppingList{}, shoppinglistrepo.ErrNotFound
	}
	var (
		l        domain.ShoppingList
		offerIDs []string
		created  time.Time
	)
	err = r.pool.QueryRow(ctx, `
		SELECT owner_key, offer_ids, created_at FROM shopping_lists WHERE id = $1
	`, listUUID).Scan(&l.Owner, &offerIDs, &created)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ShoppingList{}, shoppinglistrepo.ErrNotFound
		}
		return domain.ShoppingList{}, err
	}
	l.ID = id
	l.OfferIDs = toOfferIDs(offerIDs)
	l.CreatedAt = created.UTC()
	return l, nil
}

func (r *Repo) ListByOwner(ctx context.Context, owner domain.OwnerKey) ([]domain.ShoppingList, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, offer_ids, created_at FROM shopping_lists
		WHERE owner_key = $1
		ORDER BY created_at, id
	`, string(owner))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.ShoppingList, 0)
	for rows.Next() {
		var (
			l        domain.ShoppingList
			id       uuid.UUID
			offerIDs []string
			created  time.Time
		)
		if err := rows.Scan(&id, &offerIDs, &created); err != nil {
			return nil, err
		}
		l.ID = domain.ShoppingListID(id.String())
		l.Owner = owner
		l.OfferIDs = toOfferIDs(offerIDs)
		l.CreatedAt = created.UTC()
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *Repo) Delete(ctx context.Context, id domain.ShoppingListID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	listUUID, err := uuid.Parse(string(id))
	if err != nil {
		return shoppinglistrepo.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM shopping_lists WHERE id = $1`, listUUID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shoppinglistrepo.ErrNotFound
	}
	return nil
}

func offerIDStrings(ids []domain.OfferID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, string(id))
	}
	return out
}

func toOfferIDs(ss []string) []domain.OfferID {
	out := make([]domain.OfferID, 0, len(ss))
	for _, s := range ss {
		out = append(out, domain.OfferID(s))
	}
	return out
}
