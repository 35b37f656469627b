// Package sqlite provides repository implementations backed by a single-file
// sqlite database. It is the zero-dependency-deployment alternative to the
// postgres adapters, mainly for local development.
package sqlite

import (
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Open opens (or creates) the database at dsn and ensures the schema exists.
func Open(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS stores(
  id     TEXT PRIMARY KEY,
  name   TEXT NOT NULL,
  brand  TEXT NOT NULL,
  zip    TEXT NOT NULL,
  city   TEXT NOT NULL,
  street TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_stores_zip ON stores(zip);

CREATE TABLE IF NOT EXISTS products(
  ean         TEXT PRIMARY KEY,
  description TEXT NOT NULL,
  image       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS fetches(
  id           TEXT PRIMARY KEY,
  store_id     TEXT NOT NULL REFERENCES stores(id),
  created_unix INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_fetches_store_created ON fetches(store_id, created_unix DESC);

CREATE TABLE IF NOT EXISTS offers(
  id               TEXT PRIMARY KEY,
  seq              INTEGER NOT NULL,
  original_price   REAL NOT NULL,
  new_price        REAL NOT NULL,
  discount         REAL NOT NULL,
  percent_discount REAL NOT NULL,
  product_ean      TEXT NOT NULL REFERENCES products(ean),
  fetch_id         TEXT NOT NULL REFERENCES fetches(id)
);
CREATE INDEX IF NOT EXISTS idx_offers_fetch ON offers(fetch_id, seq);

CREATE TABLE IF NOT EXISTS recipes(
  id              TEXT PRIMARY KEY,
  owner_key       TEXT NOT NULL,
  title           TEXT NOT NULL,
  body            TEXT NOT NULL,
  offer_ids_json  TEXT NOT NULL DEFAULT '[]',
  created_unix    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_recipes_owner ON recipes(owner_key, created_unix);

CREATE TABLE IF NOT EXISTS shopping_lists(
  id              TEXT PRIMARY KEY,
  owner_key       TEXT NOT NULL,
  offer_ids_json  TEXT NOT NULL DEFAULT '[]',
  created_unix    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_shopping_lists_owner ON shopping_lists(owner_key, created_unix);
`
	_, err := db.Exec(schema)
	return err
}
