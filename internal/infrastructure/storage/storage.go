package storage

import (
	"io"

	"vigil/internal/domain/replication"
)

// Replica is a database-backed replication endpoint that owns a connection.
type Replica interface {
	replication.Endpoint
	io.Closer
}
