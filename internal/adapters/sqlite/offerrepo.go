package sqlite

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/foodwaste-kbh/clearance-api/internal/domain"
	"github.com/foodwaste-kbh/clearance-api/internal/ports/out/offerrepo"
)

// OfferRepo is a sqlite implementation of offerrepo.Repository.
type OfferRepo struct {
	db *sqlx.DB
}

func NewOfferRepo(db *sqlx.DB) *OfferRepo {
	return &OfferRepo{db: db}
}

func (r *OfferRepo) SaveIngestion(ctx context.Context, ing offerrepo.Ingestion) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.GetContext(ctx, &exists, `SELECT COUNT(*) FROM stores WHERE id = ?`, string(ing.Record.StoreID)); err != nil {
		return err
	}
	if exists == 0 {
		return offerrepo.ErrStoreUnknown
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO fetches (id, store_id, created_unix) VALUES (?,?,?)
	`, string(ing.Record.ID), string(ing.Record.StoreID), ing.Record.Created.UnixNano())
	if err != nil {
		return err
	}

	for _, p := range ing.Products {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO products (ean, description, image) VALUES (?,?,?)
			ON CONFLICT(ean) DO UPDATE SET description = excluded.description, image = excluded.image
		`, string(p.EAN), p.Description, p.Image)
		if err != nil {
			return err
		}
	}

	for i, o := range ing.Offers {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO offers (id, seq, original_price, new_price, discount, percent_discount, product_ean, fetch_id)
			VALUES (?,?,?,?,?,?,?,?)
		`, string(o.ID), i, o.OriginalPrice, o.NewPrice, o.Discount, o.PercentDiscount, string(o.ProductEAN), string(ing.Record.ID))
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *OfferRepo) NewestFetchSince(ctx context.Context, storeID domain.StoreID, after time.Time) (domain.FetchRecord, error) {
	var row struct {
		ID      string `db:"id"`
		Created int64  `db:"created_unix"`
	}
	err := r.db.GetContext(ctx, &row, `
		SELECT id, created_unix FROM fetches
		WHERE store_id = ? AND created_unix > ?
		ORDER BY created_unix DESC
		LIMIT 1
	`, string(storeID), after.UnixNano())
	if err != nil {
		if isNoRows(err) {
			return domain.FetchRecord{}, offerrepo.ErrNotFound
		}
		return domain.FetchRecord{}, err
	}
	return domain.FetchRecord{
		ID:      domain.FetchID(row.ID),
		StoreID: storeID,
		Created: time.Unix(0, row.Created).UTC(),
	}, nil
}

func (r *OfferRepo) ListOffersByFetch(ctx context.Context, id domain.FetchID) ([]offerrepo.OfferDetail, error) {
	var rows []struct {
		ID              string  `db:"id"`
		OriginalPrice   float64 `db:"original_price"`
		NewPrice        float64 `db:"new_price"`
		Discount        float64 `db:"discount"`
		PercentDiscount float64 `db:"percent_discount"`
		EAN             string  `db:"ean"`
		Description     string  `db:"description"`
		Image           string  `db:"image"`
	}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT o.id, o.original_price, o.new_price, o.discount, o.percent_discount,
		       p.ean, p.description, p.image
		FROM offers o
		JOIN products p ON p.ean = o.product_ean
		WHERE o.fetch_id = ?
		ORDER BY o.seq
	`, string(id))
	if err != nil {
		return nil, err
	}

	out := make([]offerrepo.OfferDetail, 0, len(rows))
	for _, row := range rows {
		out = append(out, offerrepo.OfferDetail{
			Offer: domain.Offer{
				ID:              domain.OfferID(row.ID),
				OriginalPrice:   row.OriginalPrice,
				NewPrice:        row.NewPrice,
				Discount:        row.Discount,
				PercentDiscount: row.PercentDiscount,
				ProductEAN:      domain.EAN(row.EAN),
				FetchID:         id,
			},
			Product: domain.Product{
				EAN:         domain.EAN(row.EAN),
				Description: row.Description,
				Image:       row.Image,
			},
		})
	}
	return out, nil
}

func (r *OfferRepo) GetOffer(ctx context.Context, id domain.OfferID) (offerrepo.OfferDetail, error) {
	var row struct {
		OriginalPrice   float64 `db:"original_price"`
		NewPrice        float64 `db:"new_price"`
		Discount        float64 `db:"discount"`
		PercentDiscount float64 `db:"percent_discount"`
		ProductEAN      string  `db:"product_ean"`
		FetchID         string  `db:"fetch_id"`
		Description     string  `db:"description"`
		Image           string  `db:"image"`
	}
	err := r.db.GetContext(ctx, &row, `
		SELECT o.original_price, o.new_price, o.discount, o.percent_discount,
		       o.product_ean, o.fetch_id, p.description, p.image
		FROM offers o
		JOIN products p ON p.ean = o.product_ean
		WHERE o.id = ?
	`, string(id))
	if err != nil {
		if isNoRows(err) {
			return offerrepo.OfferDetail{}, offerrepo.ErrNotFound
		}
		return offerrepo.OfferDetail{}, err
	}
	return offerrepo.OfferDetail{
		Offer: domain.Offer{
			ID:              id,
			OriginalPrice:   row.OriginalPrice,
			NewPrice:        row.NewPrice,
			Discount:        row.Discount,
			PercentDiscount: row.PercentDiscount,
			ProductEAN:      domain.EAN(row.ProductEAN),
			FetchID:         domain.FetchID(row.FetchID),
		},
		Product: domain.Product{
			EAN:         domain.EAN(row.ProductEAN),
			Description: row.Description,
			Image:       row.Image,
		},
	}, nil
}

func (r *OfferRepo) CountFetchesByStore(ctx context.Context) ([]offerrepo.StoreFetchCount, error) {
	var rows []struct {
		StoreID string `db:"store_id"`
		Name    string `db:"name"`
		N       int64  `db:"n"`
	}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT f.store_id, s.name, COUNT(*) AS n
		FROM fetches f
		JOIN stores s ON s.id = f.store_id
		GROUP BY f.store_id, s.name
		ORDER BY n DESC, f.store_id
	`)
	if err != nil {
		return nil, err
	}
	out := make([]offerrepo.StoreFetchCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, offerrepo.StoreFetchCount{
			StoreID:   domain.StoreID(row.StoreID),
			StoreName: row.Name,
			Count:     row.N,
		})
	}
	return out, nil
}

func (r *OfferRepo) CountFetchesByZip(ctx context.Context) ([]offerrepo.ZipFetchCount, error) {
	var rows []struct {
		Zip string `db:"zip"`
		N   int64  `db:"n"`
	}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT s.zip, COUNT(*) AS n
		FROM fetches f
		JOIN stores s ON s.id = f.store_id
		GROUP BY s.zip
		ORDER BY n DESC, s.zip
	`)
	if err != nil {
		return nil, err
	}
	out := make([]offerrepo.ZipFetchCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, offerrepo.ZipFetchCount{Zip: row.Zip, Count: row.N})
	}
	return out, nil
}

func (r *OfferRepo) CountOffersByProduct(ctx context.Context) ([]offerrepo.ProductOfferCount, error) {
	var rows []struct {
		EAN         string `db:"product_ean"`
		Description string `db:"description"`
		N           int64  `db:"n"`
	}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT o.product_ean, p.description, COUNT(*) AS n
		FROM offers o
		JOIN products p ON p.ean = o.product_ean
		GROUP BY o.product_ean, p.description
		ORDER BY n DESC, o.product_ean
	`)
	if err != nil {
		return nil, err
	}
	out := make([]offerrepo.ProductOfferCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, offerrepo.ProductOfferCount{
			EAN:         domain.EAN(row.EAN),
			Description: row.Description,
			Count:       row.N,
		})
	}
	return out, nil
}
