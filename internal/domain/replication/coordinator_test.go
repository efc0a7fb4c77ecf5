package replication

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"vigil/internal/domain/identity"
)

type document struct {
	Items map[string]string `json:"items"`
	Total int               `json:"total"`
}

type pushRecorder struct {
	mu      sync.Mutex
	results map[string]bool
}

func (p *pushRecorder) ObservePush(endpoint string, ok bool, _ time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results[endpoint] = ok
}

func newCredential(t *testing.T) *identity.Credential {
	t.Helper()
	cred, err := identity.Generate()
	require.NoError(t, err)
	return cred
}

func endpoints(fakes ...*fakeEndpoint) []Endpoint {
	out := make([]Endpoint, len(fakes))
	for i, f := range fakes {
		out[i] = f
	}
	return out
}

func TestBootstrap_CreatesIdentityOnEveryEndpoint(t *testing.T) {
	a, b, c := newFake("a"), newFake("b"), newFake("c")
	a.createErr = errUnreachable
	coord := NewCoordinator(endpoints(a, b, c), time.Second, slog.Default())

	id, err := coord.Bootstrap(context.Background(), newCredential(t))
	require.NoError(t, err)

	assert.True(t, id.Created)
	assert.Equal(t, "b-uuid", id.Primary, "first successful endpoint wins")
	assert.Equal(t, map[string]string{"b": "b-uuid", "c": "c-uuid"}, id.Endpoints)
	assert.Equal(t, "", a.Identity())
	assert.Equal(t, "b-uuid", b.Identity())
	assert.Equal(t, "c-uuid", c.Identity())
	require.NotNil(t, coord.Identity())
}

func TestBootstrap_AdoptsExistingIdentityWithoutRemoteCalls(t *testing.T) {
	a, b := newFake("a"), newFake("b")
	cred := newCredential(t)
	cred.Identity = "persisted-uuid"
	cred.Endpoints["b"] = "b-specific"
	coord := NewCoordinator(endpoints(a, b), time.Second, slog.Default())

	id, err := coord.Bootstrap(context.Background(), cred)
	require.NoError(t, err)

	assert.False(t, id.Created)
	assert.Equal(t, "persisted-uuid", id.Primary)
	assert.Equal(t, 0, a.creates+b.creates)
	assert.Equal(t, "persisted-uuid", a.Identity())
	assert.Equal(t, "b-specific", b.Identity())
}

func TestBootstrap_AllFailIsDegraded(t *testing.T) {
	a, b := newFake("a"), newFake("b")
	a.createErr = errUnreachable
	b.createErr = errUnreachable
	coord := NewCoordinator(endpoints(a, b), time.Second, slog.Default())

	_, err := coord.Bootstrap(context.Background(), newCredential(t))
	assert.ErrorIs(t, err, ErrNoIdentity)
	assert.Nil(t, coord.Identity())

	outcomes, err := coord.Push(context.Background(), document{})
	assert.ErrorIs(t, err, ErrNoIdentity)
	assert.Empty(t, outcomes)
	assert.Equal(t, 0, a.puts+b.puts)

	_, err = coord.Pull(context.Background(), &document{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPush_PartialFailureStillSucceeds(t *testing.T) {
	a, b, c := newFake("a"), newFake("b"), newFake("c")
	rec := &pushRecorder{results: map[string]bool{}}
	coord := NewCoordinator(endpoints(a, b, c), time.Second, slog.Default()).WithObserver(rec)
	_, err := coord.Bootstrap(context.Background(), newCredential(t))
	require.NoError(t, err)

	a.putErr = errUnreachable
	c.putErr = errUnreachable

	outcomes, err := coord.Push(context.Background(), document{Total: 1})
	require.NoError(t, err)

	require.Len(t, outcomes, 3)
	assert.Equal(t, []string{"b"}, SyncedTo(outcomes))
	assert.ErrorIs(t, outcomes[0].Err, errUnreachable)
	assert.True(t, outcomes[1].OK())
	assert.Equal(t, map[string]bool{"a": false, "b": true, "c": false}, rec.results)
}

func TestPush_TwoOfThreeSucceed(t *testing.T) {
	a, b, c := newFake("a"), newFake("b"), newFake("c")
	coord := NewCoordinator(endpoints(a, b, c), time.Second, slog.Default())
	_, err := coord.Bootstrap(context.Background(), newCredential(t))
	require.NoError(t, err)

	b.putErr = errUnreachable

	outcomes, err := coord.Push(context.Background(), document{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, SyncedTo(outcomes))
}

func TestPush_AllFailReturnsReasons(t *testing.T) {
	a, b := newFake("a"), newFake("b")
	coord := NewCoordinator(endpoints(a, b), time.Second, slog.Default())
	_, err := coord.Bootstrap(context.Background(), newCredential(t))
	require.NoError(t, err)

	a.putErr = errUnreachable
	b.putErr = errUnreachable

	outcomes, err := coord.Push(context.Background(), document{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllFailed)
	assert.Empty(t, SyncedTo(outcomes))

	var pushErr *PushError
	require.ErrorAs(t, err, &pushErr)
	assert.Equal(t, map[string]string{"a": "connection refused", "b": "connection refused"}, pushErr.Reasons())
}

func TestPush_EndpointWithoutIdentityFails(t *testing.T) {
	a, b := newFake("a"), newFake("b")
	a.createErr = errUnreachable
	coord := NewCoordinator(endpoints(a, b), time.Second, slog.Default())
	_, err := coord.Bootstrap(context.Background(), newCredential(t))
	require.NoError(t, err)

	outcomes, err := coord.Push(context.Background(), document{})
	require.NoError(t, err)
	assert.ErrorIs(t, outcomes[0].Err, ErrNoIdentity)
	assert.Equal(t, 0, a.puts)
	assert.Equal(t, []string{"b"}, SyncedTo(outcomes))
}

func TestPush_TimeoutIsAnOrdinaryFailure(t *testing.T) {
	slow, fast := newFake("slow"), newFake("fast")
	slow.block = true
	coord := NewCoordinator(endpoints(slow, fast), 20*time.Millisecond, slog.Default())
	_, err := coord.Bootstrap(context.Background(), newCredential(t))
	require.NoError(t, err)

	outcomes, err := coord.Push(context.Background(), document{})
	require.NoError(t, err)
	assert.ErrorIs(t, outcomes[0].Err, context.DeadlineExceeded)
	assert.Equal(t, []string{"fast"}, SyncedTo(outcomes))
}

func TestPull_FirstEndpointInOrderWins(t *testing.T) {
	a, b, c := newFake("a"), newFake("b"), newFake("c")
	coord := NewCoordinator(endpoints(a, b, c), time.Second, slog.Default())
	_, err := coord.Bootstrap(context.Background(), newCredential(t))
	require.NoError(t, err)

	a.getErr = errUnreachable
	b.doc = json.RawMessage(`{"items":{"x":"from-b"},"total":1}`)
	c.doc = json.RawMessage(`{"items":{"x":"from-c"},"total":1}`)

	var got document
	from, err := coord.Pull(context.Background(), &got)
	require.NoError(t, err)

	assert.Equal(t, "b", from)
	assert.Equal(t, "from-b", got.Items["x"])
	assert.Equal(t, 0, c.gets, "pull stops at the first success")
}

func TestPull_SkipsUndecodableDocuments(t *testing.T) {
	a, b := newFake("a"), newFake("b")
	coord := NewCoordinator(endpoints(a, b), time.Second, slog.Default())
	_, err := coord.Bootstrap(context.Background(), newCredential(t))
	require.NoError(t, err)

	a.doc = json.RawMessage(`{not json`)
	b.doc = json.RawMessage(`{"total":3}`)

	var got document
	from, err := coord.Pull(context.Background(), &got)
	require.NoError(t, err)
	assert.Equal(t, "b", from)
	assert.Equal(t, 3, got.Total)
}

func TestPull_NothingStored(t *testing.T) {
	a, b := newFake("a"), newFake("b")
	coord := NewCoordinator(endpoints(a, b), time.Second, slog.Default())
	_, err := coord.Bootstrap(context.Background(), newCredential(t))
	require.NoError(t, err)

	_, err = coord.Pull(context.Background(), &document{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPushThenPull_RoundTrip(t *testing.T) {
	a := newFake("a")
	coord := NewCoordinator(endpoints(a), time.Second, slog.Default())
	_, err := coord.Bootstrap(context.Background(), newCredential(t))
	require.NoError(t, err)

	in := document{Items: map[string]string{"k": "v"}, Total: 1}
	_, err = coord.Push(context.Background(), in)
	require.NoError(t, err)

	var out document
	_, err = coord.Pull(context.Background(), &out)
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.Equal(t, []string{"a"}, coord.Endpoints())
}

func TestPush_DegradedRecoversWhenAnEndpointComesBack(t *testing.T) {
	a := newFake("a")
	a.createErr = errUnreachable
	var persisted []Identity
	coord := NewCoordinator(endpoints(a), time.Second, slog.Default()).
		WithRetryInterval(0).
		OnIdentity(func(id Identity) error {
			persisted = append(persisted, id)
			return nil
		})

	_, err := coord.Bootstrap(context.Background(), newCredential(t))
	require.ErrorIs(t, err, ErrNoIdentity)

	a.mu.Lock()
	a.createErr = nil
	a.mu.Unlock()

	outcomes, err := coord.Push(context.Background(), document{Total: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, SyncedTo(outcomes))

	require.NotNil(t, coord.Identity())
	assert.Equal(t, "a-uuid", coord.Identity().Primary)
	require.Len(t, persisted, 1)
	assert.True(t, persisted[0].Created)
	assert.Equal(t, map[string]string{"a": "a-uuid"}, persisted[0].Endpoints)
	assert.Equal(t, 2, a.creates)
}

func TestPush_DegradedRetryIsThrottled(t *testing.T) {
	a := newFake("a")
	a.createErr = errUnreachable
	coord := NewCoordinator(endpoints(a), time.Second, slog.Default()).WithRetryInterval(time.Hour)

	_, err := coord.Bootstrap(context.Background(), newCredential(t))
	require.ErrorIs(t, err, ErrNoIdentity)
	a.createErr = nil

	_, err = coord.Push(context.Background(), document{})
	assert.ErrorIs(t, err, ErrNoIdentity)
	assert.Equal(t, 1, a.creates, "no second attempt inside the interval")
	assert.Nil(t, coord.Identity())
}

func TestPush_DegradedRetryStillFailing(t *testing.T) {
	a := newFake("a")
	a.createErr = errUnreachable
	coord := NewCoordinator(endpoints(a), time.Second, slog.Default()).WithRetryInterval(0)

	_, err := coord.Bootstrap(context.Background(), newCredential(t))
	require.ErrorIs(t, err, ErrNoIdentity)

	_, err = coord.Push(context.Background(), document{})
	assert.ErrorIs(t, err, ErrNoIdentity)
	assert.Equal(t, 2, a.creates)
	assert.Equal(t, 0, a.puts)
}
