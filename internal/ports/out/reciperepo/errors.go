package reciperepo

import "errors"

var (
	// ErrNotFound indicates the requested recipe does not exist.
	ErrNotFound = errors.New("recipe not found")

	// ErrAlreadyExists indicates a recipe already exists with the provided ID.
	ErrAlreadyExists = errors.New("recipe already exists")
)
