package vigil

import "github.com/google/uuid"

// IDGenerator issues vigil identifiers. Only practical uniqueness is required.
type IDGenerator interface {
	NewID() string
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}
