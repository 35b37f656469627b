package offerrepo

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
	"github.com/foodwaste-kbh/clearance-api/internal/ports/out/offerrepo"
)

// Repo is a Postgres implementation of offerrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) SaveIngestion(ctx context.Context, ing offerrepo.Ingestion) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	fetchUUID, err := uuid.Parse(string(ing.Record.ID))
	if err != nil {
		return fmt.Errorf("invalid fetch id: %w", err)
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO fetches (id, store_id, created) VALUES ($1,$2,$3)
		`, fetchUUID, string(ing.Record.StoreID), ing.Record.Created.UTC())
		if err != nil {
			if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.ForeignKeyViolationCode {
				return offerrepo.ErrStoreUnknown
			}
			return err
		}

		for _, p := range ing.Products {
			_, err := tx.Exec(ctx, `
				INSERT INTO products (ean, description, image) VALUES ($1,$2,$3)
				ON CONFLICT (ean) DO UPDATE SET description = EXCLUDED.description, image = EXCLUDED.image
			`, string(p.EAN), p.Description, p.Image)
			if err != nil {
				return err
			}
		}

		for _, o := range ing.Offers {
			offerUUID, err := uuid.Parse(string(o.ID))
			if err != nil {
				return fmt.Errorf("invalid offer id: %w", err)
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO offers (id, original_price, new_price, discount, percent_discount, product_ean, fetch_id)
				VALUES ($1,$2,$3,$4,$5,$6,$7)
			`, offerUUID, o.OriginalPrice, o.NewPrice, o.Discount, o.PercentDiscount, string(o.ProductEAN), fetchUUID)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repo) NewestFetchSince(ctx context.Context, storeID domain.StoreID, after time.Time) (domain.FetchRecord, error) {
	if r.pool == nil {
		return domain.FetchRecord{}, errors.New("nil postgres pool")
	}
	var (
		id      uuid.UUID
		created time.Time
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, created FROM fetches
		WHERE store_id = $1 AND created > $2
		ORDER BY created DESC
		LIMIT 1
	`, string(storeID), after.UTC()).Scan(&id, &created)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.FetchRecord{}, offerrepo.ErrNotFound
		}
		return domain.FetchRecord{}, err
	}
	return domain.FetchRecord{ID: domain.FetchID(id.String()), StoreID: storeID, Created: created.UTC()}, nil
}

func (r *Repo) ListOffersByFetch(ctx context.Context, id domain.FetchID) ([]offerrepo.OfferDetail, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	fetchUUID, err := uuid.Parse(string(id))
	if err != nil {
		return nil, fmt.Errorf("invalid fetch id: %w", err)
	}
	rows, err := r.pool.Query(ctx, `
		SELECT o.id, o.original_price, o.new_price, o.discount, o.percent_discount,
		       p.ean, p.description, p.image
		FROM offers o
		JOIN products p ON p.ean = o.product_ean
		WHERE o.fetch_id = $1
		ORDER BY o.seq
	`, fetchUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]offerrepo.OfferDetail, 0)
	for rows.Next() {
		var (
			d       offerrepo.OfferDetail
			offerID uuid.UUID
		)
		if err := rows.Scan(&offerID, &d.Offer.OriginalPrice, &d.Offer.NewPrice, &d.Offer.Discount,
			&d.Offer.PercentDiscount, &d.Product.EAN, &d.Product.Description, &d.Product.Image); err != nil {
			return nil, err
		}
		d.Offer.ID = domain.OfferID(offerID.String())
		d.Offer.ProductEAN = d.Product.EAN
		d.Offer.FetchID = id
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *Repo) GetOffer(ctx context.Context, id domain.OfferID) (offerrepo.OfferDetail, error) {
	if r.pool == nil {
		return offerrepo.OfferDetail{}, errors.New("nil postgres pool")
	}
	offerUUID, err := uuid.Parse(string(id))
	if err != nil {
		return offerrepo.OfferDetail{}, offerrepo.ErrNotFound
	}
	var (
		d       offerrepo.OfferDetail
		fetchID uuid.UUID
	)
	err = r.pool.QueryRow(ctx, `
		SELECT o.original_price, o.new_price, o.discount, o.percent_discount,
		       o.product_ean, o.fetch_id, p.description, p.image
		FROM offers o
		JOIN products p ON p.ean = o.product_ean
		WHERE o.id = $1
	`, offerUUID).Scan(&d.Offer.OriginalPrice, &d.Offer.NewPrice, &d.Offer.Discount,
		&d.Offer.PercentDiscount, &d.Product.EAN, &fetchID, &d.Product.Description, &d.Product.Image)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return offerrepo.OfferDetail{}, offerrepo.ErrNotFound
		}
		return offerrepo.OfferDetail{}, err
	}
	d.Offer.ID = id
	d.Offer.ProductEAN = d.Product.EAN
	d.Offer.FetchID = domain.FetchID(fetchID.String())
	return d, nil
}

func (r *Repo) CountFetchesByStore(ctx context.Context) ([]offerrepo.StoreFetchCount, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT f.store_id, s.name, COUNT(*) AS n
		FROM fetches f
		JOIN stores s ON s.id = f.store_id
		GROUP BY f.store_id, s.name
		ORDER BY n DESC, f.store_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]offerrepo.StoreFetchCount, 0)
	for rows.Next() {
		var c offerrepo.StoreFetchCount
		if err := rows.Scan(&c.StoreID, &c.StoreName, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) CountFetchesByZip(ctx context.Context) ([]offerrepo.ZipFetchCount, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT s.zip, COUNT(*) AS n
		FROM fetches f
		JOIN stores s ON s.id = f.store_id
		GROUP BY s.zip
		ORDER BY n DESC, s.zip
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]offerrepo.ZipFetchCount, 0)
	for rows.Next() {
		var c offerrepo.ZipFetchCount
		if err := rows.Scan(&c.Zip, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) CountOffersByProduct(ctx context.Context) ([]offerrepo.ProductOfferCount, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT o.product_ean, p.description, COUNT(*) AS n
		FROM offers o
		JOIN products p ON p.ean = o.product_ean
		GROUP BY o.product_ean, p.description
		ORDER BY n DESC, o.product_ean
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]offerrepo.ProductOfferCount, 0)
	for rows.Next() {
		var c offerrepo.ProductOfferCount
		if err := rows.Scan(&c.EAN, &c.Description, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
