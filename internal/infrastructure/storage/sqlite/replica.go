package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"vigil/internal/domain/identity"
	"vigil/internal/domain/replication"
	"vigil/internal/infrastructure/storage"
)

// Replica keeps a copy of the shared document in a local sqlite file.
type Replica struct {
	name string
	db   *sql.DB
	cred *identity.Credential
	now  func() time.Time

	mu sync.RWMutex
	id string
}

var _ storage.Replica = (*Replica)(nil)

func New(name, path string, cred *identity.Credential) (*Replica, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite replica: %w", err)
	}

	r := &Replica{name: name, db: db, cred: cred, now: time.Now}
	if err := r.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite replica: %w", err)
	}
	return r, nil
}

func (r *Replica) initTables() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS identities (
			uuid TEXT PRIMARY KEY,
			pub_key TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS documents (
			uuid TEXT PRIMARY KEY REFERENCES identities(uuid) ON DELETE CASCADE,
			body TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_identities_pub_key ON identities(pub_key);
	`)
	return err
}

func (r *Replica) Name() string { return r.name }

func (r *Replica) Close() error {
	return r.db.Close()
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

// CreateIdentity issues a fresh identity owned by the credential's public key.
func (r *Replica) CreateIdentity(ctx context.Context) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO identities (uuid, pub_key, created_at) VALUES (?, ?, ?)`,
		id, r.cred.PublicKey(), r.now().UnixMilli())
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

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO documents (uuid, body, updated_at)
		SELECT uuid, ?, ? FROM identities WHERE uuid = ? AND pub_key = ?
		ON CONFLICT (uuid) DO UPDATE SET
			body = excluded.body,
			updated_at = excluded.updated_at
	`, string(doc), r.now().UnixMilli(), id, r.cred.PublicKey())
	if err != nil {
		return fmt.Errorf("put document: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("put document: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("put document: identity %s not owned by this key", id)
	}
	return nil
}

func (r *Replica) Get(ctx context.Context) (json.RawMessage, error) {
	id := r.Identity()
	if id == "" {
		return nil, replication.ErrNoIdentity
	}

	var body string
	err := r.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE uuid = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, replication.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return json.RawMessage(body), nil
}
