package storerepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/foodwaste-kbh/clearance-api/internal/adapters/postgres"
	"github.com/foodwaste-kbh/clearance-api/internal/domain"
	"github.com/foodwaste-kbh/clearance-api/internal/ports/out/storerepo"
)

// Repo is a Postgres implementation of storerepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) CreateBatch(ctx context.Context, stores []domain.Store) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	if len(stores) == 0 {
		return nil
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, s := range stores {
			_, err := tx.Exec(ctx, `
				INSERT INTO stores (id, name, brand, zip, city, street)
				VALUES ($1,$2,$3,$4,$5,$6)
			`, string(s.ID), s.Name, s.Brand, s.Zip, s.City, s.Street)
			if err != nil {
				if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
					return storerepo.ErrAlreadyExists
				}
				return err
			}
		}
		return nil
	})
}

func (r *Repo) GetByID(ctx context.Context, id domain.StoreID) (domain.Store, error) {
	if r.pool == nil {
		return domain.Store{}, errors.New("nil postgres pool")
	}
	var s domain.Store
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, brand, zip, city, street FROM stores WHERE id = $1
	`, string(id)).Scan(&s.ID, &s.Name, &s.Brand, &s.Zip, &s.City, &s.Street)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Store{}, storerepo.ErrNotFound
		}
		return domain.Store{}, err
	}
	return s, nil
}

func (r *Repo) ListByZip(ctx context.Context, zip string) ([]domain.Store, error) {
	return r.list(ctx, `
		SELECT id, name, brand, zip, city, street FROM stores
		WHERE zip = $1 ORDER BY name, id
	`, zip)
}

func (r *Repo) ListAll(ctx context.Context) ([]domain.Store, error) {
	return r.list(ctx, `
		SELECT id, name, brand, zip, city, street FROM stores ORDER BY name, id
	`)
}

func (r *Repo) list(ctx context.Context, sql string, args ...any) ([]domain.Store, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Store, 0)
	for rows.Next() {
		var s domain.Store
		if err := rows.Scan(&s.ID, &s.Name, &s.Brand, &s.Zip, &s.City, &s.Street); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
