package vigil

import "errors"

var (
	ErrNotFound       = errors.New("vigil not found")
	ErrInvalidZipcode = errors.New("invalid zipcode")
	ErrInvalidData    = errors.New("invalid vigil data")
	// ErrReplication wraps failures where no replica accepted the change.
	ErrReplication = errors.New("replication failed")
)
