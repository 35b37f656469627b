package storerepo

import "errors"

var (
	// ErrNotFound indicates the requested store does not exist.
	ErrNotFound = errors.New("store not found")

	// ErrAlreadyExists indicates a store already exists with the provided ID.
	ErrAlreadyExists = errors.New("store already exists")
)
