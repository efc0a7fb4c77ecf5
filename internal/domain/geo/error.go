package geo

import "errors"

var (
	// ErrNotFound means the zipcode could not be resolved to a coordinate.
	ErrNotFound = errors.New("coordinate not found")
)
