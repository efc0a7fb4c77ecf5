package replication

import (
	"context"
	"encoding/json"
)

// Endpoint is one remote storage location holding a copy of the shared document.
// Implementations sign or authenticate requests with the credential they were built with.
type Endpoint interface {
	// Name identifies the endpoint in logs, outcomes and the persisted credential.
	Name() string
	// CreateIdentity asks the endpoint to issue a new remote identity.
	CreateIdentity(ctx context.Context) (string, error)
	// Adopt makes the endpoint use an existing identity without remote calls.
	Adopt(id string)
	// Identity returns the adopted identity, empty if none.
	Identity() string
	// Put overwrites the stored document.
	Put(ctx context.Context, doc json.RawMessage) error
	// Get returns the stored document or ErrNotFound.
	Get(ctx context.Context) (json.RawMessage, error)
}

// Outcome is the result of pushing to a single endpoint.
type Outcome struct {
	Endpoint string
	Err      error
}

func (o Outcome) OK() bool {
	return o.Err == nil
}

// SyncedTo lists the endpoints that accepted a push, in configured order.
func SyncedTo(outcomes []Outcome) []string {
	out := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		if o.OK() {
			out = append(out, o.Endpoint)
		}
	}
	return out
}

// Identity is the remote identity in use after bootstrap.
type Identity struct {
	Primary   string
	Endpoints map[string]string
	// Created is true when the identity was issued during this bootstrap and must be persisted.
	Created bool
}
