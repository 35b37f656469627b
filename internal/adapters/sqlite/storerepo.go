package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/foodwaste-kbh/clearance-api/internal/domain"
	"github.com/foodwaste-kbh/clearance-api/internal/ports/out/storerepo"
)

// StoreRepo is a sqlite implementation of storerepo.Repository.
type StoreRepo struct {
	db *sqlx.DB
}

func NewStoreRepo(db *sqlx.DB) *StoreRepo {
	return &StoreRepo{db: db}
}

type storeRow struct {
	ID     string `db:"id"`
	Name   string `db:"name"`
	Brand  string `db:"brand"`
	Zip    string `db:"zip"`
	City   string `db:"city"`
	Street string `db:"street"`
}

func (row storeRow) toDomain() domain.Store {
	return domain.Store{
		ID:     domain.StoreID(row.ID),
		Name:   row.Name,
		Brand:  row.Brand,
		Zip:    row.Zip,
		City:   row.City,
		Street: row.Street,
	}
}

func (r *StoreRepo) CreateBatch(ctx context.Context, stores []domain.Store) error {
	if len(stores) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, s := range stores {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO stores (id, name, brand, zip, city, street) VALUES (?,?,?,?,?,?)
		`, string(s.ID), s.Name, s.Brand, s.Zip, s.City, s.Street)
		if err != nil {
			if isConstraintErr(err) {
				return storerepo.ErrAlreadyExists
			}
			return err
		}
	}
	return tx.Commit()
}

func (r *StoreRepo) GetByID(ctx context.Context, id domain.StoreID) (domain.Store, error) {
	var row storeRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, name, brand, zip, city, street FROM stores WHERE id = ?
	`, string(id))
	if err != nil {
		if isNoRows(err) {
			return domain.Store{}, storerepo.ErrNotFound
		}
		return domain.Store{}, err
	}
	return row.toDomain(), nil
}

func (r *StoreRepo) ListByZip(ctx context.Context, zip string) ([]domain.Store, error) {
	var rows []storeRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, name, brand, zip, city, street FROM stores WHERE zip = ? ORDER BY name, id
	`, zip)
	if err != nil {
		return nil, err
	}
	return toStores(rows), nil
}

func (r *StoreRepo) ListAll(ctx context.Context) ([]domain.Store, error) {
	var rows []storeRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, name, brand, zip, city, street FROM stores ORDER BY name, id
	`)
	if err != nil {
		return nil, err
	}
	return toStores(rows), nil
}

func toStores(rows []storeRow) []domain.Store {
	out := make([]domain.Store, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out
}

func isConstraintErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "constraint")
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
