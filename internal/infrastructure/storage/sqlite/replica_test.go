package sqlite

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vigil/internal/domain/identity"
	"vigil/internal/domain/replication"
)

func newReplica(t *testing.T, path string, cred *identity.Credential) *Replica {
	t.Helper()
	r, err := New("sqlite", path, cred)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestReplica_RoundTrip(t *testing.T) {
	cred, err := identity.Generate()
	require.NoError(t, err)
	r := newReplica(t, filepath.Join(t.TempDir(), "replica.db"), cred)
	ctx := context.Background()

	id, err := r.CreateIdentity(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	r.Adopt(id)

	_, err = r.Get(ctx)
	assert.ErrorIs(t, err, replication.ErrNotFound)

	require.NoError(t, r.Put(ctx, json.RawMessage(`{"totalVigils":1}`)))
	require.NoError(t, r.Put(ctx, json.RawMessage(`{"totalVigils":2}`)))

	got, err := r.Get(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"totalVigils":2}`, string(got))
}

func TestReplica_SurvivesReopen(t *testing.T) {
	cred, err := identity.Generate()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "replica.db")
	ctx := context.Background()

	first, err := New("sqlite", path, cred)
	require.NoError(t, err)
	id, err := first.CreateIdentity(ctx)
	require.NoError(t, err)
	first.Adopt(id)
	require.NoError(t, first.Put(ctx, json.RawMessage(`{"vigils":{}}`)))
	require.NoError(t, first.Close())

	second := newReplica(t, path, cred)
	second.Adopt(id)
	got, err := second.Get(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"vigils":{}}`, string(got))
}

func TestReplica_ForeignKeyCannotWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replica.db")
	ctx := context.Background()

	owner, err := identity.Generate()
	require.NoError(t, err)
	r := newReplica(t, path, owner)
	id, err := r.CreateIdentity(ctx)
	require.NoError(t, err)

	other, err := identity.Generate()
	require.NoError(t, err)
	intruder := newReplica(t, path, other)
	intruder.Adopt(id)

	assert.Error(t, intruder.Put(ctx, json.RawMessage(`{}`)))
}

func TestReplica_NoIdentity(t *testing.T) {
	cred, err := identity.Generate()
	require.NoError(t, err)
	r := newReplica(t, filepath.Join(t.TempDir(), "replica.db"), cred)

	assert.ErrorIs(t, r.Put(context.Background(), json.RawMessage(`{}`)), replication.ErrNoIdentity)
	_, err = r.Get(context.Background())
	assert.ErrorIs(t, err, replication.ErrNoIdentity)
}
