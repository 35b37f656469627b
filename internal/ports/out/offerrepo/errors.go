package offerrepo

import "errors"

var (
	// ErrNotFound indicates the requested fetch record or offer does not exist.
	ErrNotFound = errors.New("offer record not found")

	// ErrStoreUnknown indicates an ingestion referenced a store that is not persisted.
	ErrStoreUnknown = errors.New("ingestion references unknown store")
)
