package sqlite

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/foodwaste-kbh/clearance-api/internal/domain"
	"github.com/foodwaste-kbh/clearance-api/internal/ports/out/shoppinglistrepo"
)

// ShoppingListRepo is a sqlite implementation of shoppinglistrepo.Repository.
type ShoppingListRepo struct {
	db *sqlx.DB
}

func NewShoppingListRepo(db *sqlx.DB) *ShoppingListRepo {
	return &ShoppingListRepo{db: db}
}

type shoppingListRow struct {
	ID       string `db:"id"`
	OwnerKey string `db:"owner_key"`
	OfferIDs string `db:"offer_ids_json"`
	Created  int64  `db:"created_unix"`
}

func (row shoppingListRow) toDomain() (domain.ShoppingList, error) {
	ids, err := decodeOfferIDs(row.OfferIDs)
	if err != nil {
		return domain.ShoppingList{}, err
	}
	return domain.ShoppingList{
		ID:        domain.ShoppingListID(row.ID),
		Owner:     domain.OwnerKey(row.OwnerKey),
		OfferIDs:  ids,
		CreatedAt: time.Unix(0, row.Created).UTC(),
	}, nil
}

func (r *ShoppingListRepo) Create(ctx context.Context, l domain.ShoppingList) error {
	ids, err := encodeOfferIDs(l.OfferIDs)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO shopping_lists (id, owner_key, offer_ids_json, created_unix)
		VALUES (?,?,?,?)
	`, string(l.ID), string(l.Owner), ids, l.CreatedAt.UnixNano())
	if err != nil {
		if isConstraintErr(err) {
			return shoppinglistrepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *ShoppingListRepo) GetByID(ctx context.Context, id domain.ShoppingListID) (domain.ShoppingList, error) {
	var row shoppingListRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, owner_key, offer_ids_json, created_unix
		FROM shopping_lists WHERE id = ?
	`, string(id))
	if err != nil {
		if isNoRows(err) {
			return domain.ShoppingList{}, shoppinglistrepo.ErrNotFound
		}
		return domain.ShoppingList{}, err
	}
	return row.toDomain()
}

func (r *ShoppingListRepo) ListByOwner(ctx context.Context, owner domain.OwnerKey) ([]domain.ShoppingList, error) {
	var rows []shoppingListRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, owner_key, offer_ids_json, created_unix
		FROM shopping_lists WHERE owner_key = ?
		ORDER BY created_unix, id
	`, string(owner))
	if err != nil {
		return nil, err
	}
	out := make([]domain.ShoppingList, 0, len(rows))
	for _, row := range rows {
		l, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func (r *ShoppingListRepo) Delete(ctx context.Context, id domain.ShoppingListID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM shopping_lists WHERE id = ?`, string(id))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return shoppinglistrepo.ErrNotFound
	}
	return nil
}
