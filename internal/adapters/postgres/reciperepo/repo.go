package reciperepo

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
	"github.com/foodwaste-kbh/clearance-api/internal/ports/out/reciperepo"
)

// Repo is a Postgres implementation of reciperepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, rec domain.Recipe) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	recipeUUID, err := uuid.Parse(string(rec.ID))
	if err != nil {
		return fmt.Errorf("invalid recipe id: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO recipes (id, owner_key, title, body, offer_ids, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, recipeUUID, string(rec.Owner), rec.Title, rec.Body, offerIDStrings(rec.OfferIDs), rec.CreatedAt.UTC())
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			return reciperepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) Save(ctx context.Context, rec domain.Recipe) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	recipeUUID, err := uuid.Parse(string(rec.ID))
	if err != nil {
		return reciperepo.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE recipes SET title = $2, body = $3, offer_ids = $4 WHERE id = $1
	`, recipeUUID, rec.Title, rec.Body, offerIDStrings(rec.OfferIDs))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return reciperepo.ErrNotFound
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.RecipeID) (domain.Recipe, error) {
	if r.pool == nil {
		return domain.Recipe{}, errors.New("nil postgres pool")
	}
	recipeUUID, err := uuid.Parse(string(id))
	if err != nil {
		return domain.Recipe{}, reciperepo.ErrNotFound
	}
	var (
		rec      domain.Recipe
		offerIDs []string
		created  time.Time
	)
	err = r.pool.QueryRow(ctx, `
		SELECT owner_key, title, body, offer_ids, created_at FROM recipes WHERE id = $1
	`, recipeUUID).Scan(&rec.Owner, &rec.Title, &rec.Body, &offerIDs, &created)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Recipe{}, reciperepo.ErrNotFound
		}
		return domain.Recipe{}, err
	}
	rec.ID = id
	rec.OfferIDs = toOfferIDs(offerIDs)
	rec.CreatedAt = created.UTC()
	return rec, nil
}

func (r *Repo) ListByOwner(ctx context.Context, owner domain.OwnerKey) ([]domain.Recipe, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, body, offer_ids, created_at FROM recipes
		WHERE owner_key = $1
		ORDER BY created_at, id
	`, string(owner))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Recipe, 0)
	for rows.Next() {
		var (
			rec      domain.Recipe
			id       uuid.UUID
			offerIDs []string
			created  time.Time
		)
		if err := rows.Scan(&id, &rec.Title, &rec.Body, &offerIDs, &created); err != nil {
			return nil, err
		}
		rec.ID = domain.RecipeID(id.String())
		rec.Owner = owner
		rec.OfferIDs = toOfferIDs(offerIDs)
		rec.CreatedAt = created.UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *Repo) Delete(ctx context.Context, id domain.RecipeID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	recipeUUID, err := uuid.Parse(string(id))
	if err != nil {
		return reciperepo.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM recipes WHERE id = $1`, recipeUUID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return reciperepo.ErrNotFound
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
