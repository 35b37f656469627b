package sqlite

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/foodwaste-kbh/clearance-api/internal/domain"
	"github.com/foodwaste-kbh/clearance-api/internal/ports/out/reciperepo"
)

// RecipeRepo is a sqlite implementation of reciperepo.Repository.
type RecipeRepo struct {
	db *sqlx.DB
}

func NewRecipeRepo(db *sqlx.DB) *RecipeRepo {
	return &RecipeRepo{db: db}
}

type recipeRow struct {
	ID       string `db:"id"`
	OwnerKey string `db:"owner_key"`
	Title    string `db:"title"`
	Body     string `db:"body"`
	OfferIDs string `db:"offer_ids_json"`
	Created  int64  `db:"created_unix"`
}

func (row recipeRow) toDomain() (domain.Recipe, error) {
	ids, err := decodeOfferIDs(row.OfferIDs)
	if err != nil {
		return domain.Recipe{}, err
	}
	return domain.Recipe{
		ID:        domain.RecipeID(row.ID),
		Owner:     domain.OwnerKey(row.OwnerKey),
		Title:     row.Title,
		Body:      row.Body,
		OfferIDs:  ids,
		CreatedAt: time.Unix(0, row.Created).UTC(),
	}, nil
}

func encodeOfferIDs(ids []domain.OfferID) (string, error) {
	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, string(id))
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeOfferIDs(s string) ([]domain.OfferID, error) {
	var raw []string
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, err
	}
	ids := make([]domain.OfferID, 0, len(raw))
	for _, v := range raw {
		ids = append(ids, domain.OfferID(v))
	}
	return ids, nil
}

func (r *RecipeRepo) Create(ctx context.Context, rec domain.Recipe) error {
	ids, err := encodeOfferIDs(rec.OfferIDs)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO recipes (id, owner_key, title, body, offer_ids_json, created_unix)
		VALUES (?,?,?,?,?,?)
	`, string(rec.ID), string(rec.Owner), rec.Title, rec.Body, ids, rec.CreatedAt.UnixNano())
	if err != nil {
		if isConstraintErr(err) {
			return reciperepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *RecipeRepo) Save(ctx context.Context, rec domain.Recipe) error {
	ids, err := encodeOfferIDs(rec.OfferIDs)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE recipes SET owner_key = ?, title = ?, body = ?, offer_ids_json = ?, created_unix = ?
		WHERE id = ?
	`, string(rec.Owner), rec.Title, rec.Body, ids, rec.CreatedAt.UnixNano(), string(rec.ID))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return reciperepo.ErrNotFound
	}
	return nil
}

func (r *RecipeRepo) GetByID(ctx context.Context, id domain.RecipeID) (domain.Recipe, error) {
	var row recipeRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, owner_key, title, body, offer_ids_json, created_unix
		FROM recipes WHERE id = ?
	`, string(id))
	if err != nil {
		if isNoRows(err) {
			return domain.Recipe{}, reciperepo.ErrNotFound
		}
		return domain.Recipe{}, err
	}
	return row.toDomain()
}

func (r *RecipeRepo) ListByOwner(ctx context.Context, owner domain.OwnerKey) ([]domain.Recipe, error) {
	var rows []recipeRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, owner_key, title, body, offer_ids_json, created_unix
		FROM recipes WHERE owner_key = ?
		ORDER BY created_unix, id
	`, string(owner))
	if err != nil {
		return nil, err
	}
	out := make([]domain.Recipe, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *RecipeRepo) Delete(ctx context.Context, id domain.RecipeID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, string(id))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return reciperepo.ErrNotFound
	}
	return nil
}
