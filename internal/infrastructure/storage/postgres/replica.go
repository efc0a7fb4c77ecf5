package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"vigil/internal/domain/identity"
	"vigil/internal/domain/replication"
	"vigil/internal/infrastructure/storage"
)

// Replica keeps a copy of the shared document in postgres.
type Replica struct {
	name  string
	db    querier
	cred  *identity.Credential
	close func() error

	mu sync.RWMutex
	id string
}

var _ storage.Replica = (*Replica)(nil)

// NewReplica takes ownership of s; closing the replica closes the pool.
func NewReplica(name string, s *Storage, cred *identity.Credential) *Replica {
	r := newReplica(name, s.pool, cred)
	r.close = s.Close
	return r
}

func newReplica(name string, db querier, cred *identity.Credential) *Replica {
	return &Replica{name: name, db: db, cred: cred}
}

func (r *Replica) Name() string { return r.name }

func (r *Replica) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close()
}

func (r *Replica) Adopt(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.id = id
}

func (r *Replica) Identity() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.id
}

func (r *Replica) CreateIdentity(ctx context.Context) (string, error) {
	id := uuid.NewString()
	_, err := r.db.Exec(ctx,
		`INSERT INTO identities (uuid, pub_key) VALUES ($1, $2)`,
		id, r.cred.PublicKey())
	if err != nil {
		return "", fmt.Errorf("create identity: %w", err)
	}
	return id, nil
}

func (r *Replica) Put(ctx context.Context, doc json.RawMessage) error {
	id := r.Identity()
	if id == "" {
		return replication.ErrNoIdentity
	}

	tag, err := r.db.Exec(ctx, `
		INSERT INTO documents (uuid, body, updated_at)
		SELECT uuid, $1::jsonb, now() FROM identities WHERE uuid = $2 AND pub_key = $3
		ON CONFLICT (uuid) DO UPDATE SET
			body = EXCLUDED.body,
			updated_at = EXCLUDED.updated_at
	`, string(doc), id, r.cred.PublicKey())
	if err != nil {
		return fmt.Errorf("put document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("put document: identity %s not owned by this key", id)
	}
	return nil
}

func (r *Replica) Get(ctx context.Context) (json.RawMessage, error) {
	id := r.Identity()
	if id == "" {
		return nil, replication.ErrNoIdentity
	}

	var body []byte
	err := r.db.QueryRow(ctx, `SELECT body FROM documents WHERE uuid = $1`, id).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, replication.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return json.RawMessage(body), nil
}
