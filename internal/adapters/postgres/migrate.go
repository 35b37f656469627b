package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is the full DDL for the service. Statements are idempotent so Migrate
// can run at every startup.
const Schema = `
CREATE TABLE IF NOT EXISTS stores (
	id     text PRIMARY KEY,
	name   text NOT NULL,
	brand  text NOT NULL,
	zip    text NOT NULL,
	city   text NOT NULL,
	street text NOT NULL
);
CREATE INDEX IF NOT EXISTS stores_zip_idx ON stores (zip);

CREATE TABLE IF NOT EXISTS products (
	ean         text PRIMARY KEY,
	description text NOT NULL,
	image       text NOT NULL
);

CREATE TABLE IF NOT EXISTS fetches (
	id       uuid PRIMARY KEY,
	store_id text NOT NULL REFERENCES stores (id),
	created  timestamptz NOT NULL
);
CREATE INDEX IF NOT EXISTS fetches_store_created_idx ON fetches (store_id, created DESC);

CREATE TABLE IF NOT EXISTS offers (
	id               uuid PRIMARY KEY,
	seq              bigint GENERATED ALWAYS AS IDENTITY,
	original_price   double precision NOT NULL,
	new_price        double precision NOT NULL,
	discount         double precision NOT NULL,
	percent_discount double precision NOT NULL,
	product_ean      text NOT NULL REFERENCES products (ean),
	fetch_id         uuid NOT NULL REFERENCES fetches (id)
);
CREATE INDEX IF NOT EXISTS offers_fetch_idx ON offers (fetch_id, seq);

CREATE TABLE IF NOT EXISTS recipes (
	id         uuid PRIMARY KEY,
	owner_key  text NOT NULL,
	title      text NOT NULL,
	body       text NOT NULL,
	offer_ids  text[] NOT NULL DEFAULT '{}',
	created_at timestamptz NOT NULL
);
CREATE INDEX IF NOT EXISTS recipes_owner_idx ON recipes (owner_key, created_at);

CREATE TABLE IF NOT EXISTS shopping_lists (
	id         uuid PRIMARY KEY,
	owner_key  text NOT NULL,
	offer_ids  text[] NOT NULL DEFAULT '{}',
	created_at timestamptz NOT NULL
);
CREATE INDEX IF NOT EXISTS shopping_lists_owner_idx ON shopping_lists (owner_key, created_at);
`

// Migrate applies the schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, Schema)
	return err
}
