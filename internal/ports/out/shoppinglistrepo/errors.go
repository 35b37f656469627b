package shoppinglistrepo

import "errors"

var (
	// ErrNotFound indicates the requested shopping list does not exist.
	ErrNotFound = errors.New("shopping list not found")

	// ErrAlreadyExists indicates a shopping list already exists with the
	// provided ID.
	ErrAlreadyExists = errors.New("shopping list already exists")
)
