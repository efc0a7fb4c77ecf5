package replication

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"

	"vigil/internal/domain/identity"
)

const (
	DefaultTimeout = 8 * time.Second
	// DefaultRetryInterval spaces bootstrap retries while degraded.
	DefaultRetryInterval = 30 * time.Second
)

// Observer receives per-endpoint push results. Used for metrics.
type Observer interface {
	ObservePush(endpoint string, ok bool, took time.Duration)
}

// Coordinator replicates one JSON document to every configured endpoint.
// There is no merging: a push overwrites the whole document on each endpoint.
type Coordinator struct {
	endpoints []Endpoint
	timeout   time.Duration
	log       *slog.Logger
	observer  Observer

	retryEvery time.Duration
	onIdentity func(Identity) error
	now        func() time.Time

	mu       sync.RWMutex
	identity *Identity

	// retryMu serializes degraded-mode bootstrap retries; cred and lastAttempt are guarded by mu.
	retryMu     sync.Mutex
	cred        *identity.Credential
	lastAttempt time.Time
}

func NewCoordinator(endpoints []Endpoint, timeout time.Duration, log *slog.Logger) *Coordinator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Coordinator{
		endpoints:  endpoints,
		timeout:    timeout,
		log:        log.With("component", "replication"),
		retryEvery: DefaultRetryInterval,
		now:        time.Now,
	}
}

func (c *Coordinator) WithObserver(o Observer) *Coordinator {
	c.observer = o
	return c
}

// WithRetryInterval sets how often a degraded coordinator may retry bootstrap. Zero retries on every push.
func (c *Coordinator) WithRetryInterval(d time.Duration) *Coordinator {
	c.retryEvery = d
	return c
}

// OnIdentity registers a hook run when a bootstrap retry creates an identity,
// typically to persist it.
func (c *Coordinator) OnIdentity(fn func(Identity) error) *Coordinator {
	c.onIdentity = fn
	return c
}

// Endpoints returns the configured endpoint names in preference order.
func (c *Coordinator) Endpoints() []string {
	names := make([]string, len(c.endpoints))
	for i, ep := range c.endpoints {
		names[i] = ep.Name()
	}
	return names
}

// Identity returns the identity in use, nil in degraded mode.
func (c *Coordinator) Identity() *Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.identity
}

// Bootstrap adopts the credential's identity on every endpoint, or creates a new
// identity on each endpoint when the credential has none. The first endpoint (in
// configured order) to create one supplies the primary identity. If every
// endpoint fails ErrNoIdentity is returned and the coordinator stays degraded.
func (c *Coordinator) Bootstrap(ctx context.Context, cred *identity.Credential) (Identity, error) {
	c.mu.Lock()
	c.cred = cred
	c.lastAttempt = c.now()
	c.mu.Unlock()

	if cred.HasIdentity() {
		ids := make(map[string]string, len(c.endpoints))
		for _, ep := range c.endpoints {
			id := cred.EndpointIdentity(ep.Name())
			ep.Adopt(id)
			ids[ep.Name()] = id
		}
		adopted := Identity{Primary: cred.Identity, Endpoints: ids}
		c.setIdentity(adopted)
		c.log.Info("adopted existing remote identity", "uuid", cred.Identity, "endpoints", len(c.endpoints))
		return adopted, nil
	}

	created := Identity{Endpoints: make(map[string]string), Created: true}
	for _, ep := range c.endpoints {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		id, err := ep.CreateIdentity(callCtx)
		cancel()
		if err != nil {
			c.log.Warn("failed to create remote identity", "endpoint", ep.Name(), "error", err)
			continue
		}

		ep.Adopt(id)
		created.Endpoints[ep.Name()] = id
		if created.Primary == "" {
			created.Primary = id
		}
	}

	if created.Primary == "" {
		c.log.Error("no endpoint issued a remote identity, running degraded")
		return Identity{}, ErrNoIdentity
	}

	c.setIdentity(created)
	c.log.Info("created remote identity", "uuid", created.Primary, "endpoints", len(created.Endpoints))
	return created, nil
}

func (c *Coordinator) setIdentity(id Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.identity = &id
}

// retryBootstrap runs Bootstrap again while degraded, at most once per retry interval.
func (c *Coordinator) retryBootstrap(ctx context.Context) error {
	c.retryMu.Lock()
	defer c.retryMu.Unlock()

	if c.Identity() != nil {
		return nil
	}

	c.mu.RLock()
	cred, last := c.cred, c.lastAttempt
	c.mu.RUnlock()
	if cred == nil || c.now().Sub(last) < c.retryEvery {
		return ErrNoIdentity
	}

	c.log.Info("retrying remote identity bootstrap")
	id, err := c.Bootstrap(ctx, cred)
	if err != nil {
		return err
	}
	if id.Created && c.onIdentity != nil {
		if err := c.onIdentity(id); err != nil {
			c.log.Error("failed to persist recovered identity", "error", err)
		}
	}
	return nil
}

// Push sends v to every endpoint concurrently. It fails only when zero endpoints
// accept the document; partial failure is logged and reported through outcomes.
// A degraded coordinator first retries bootstrap.
func (c *Coordinator) Push(ctx context.Context, v any) ([]Outcome, error) {
	if c.Identity() == nil {
		if err := c.retryBootstrap(ctx); err != nil {
			return nil, err
		}
	}

	doc, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}

	outcomes := make([]Outcome, len(c.endpoints))
	var g errgroup.Group
	for i, ep := range c.endpoints {
		g.Go(func() error {
			outcomes[i] = c.pushOne(ctx, ep, doc)
			return nil
		})
	}
	_ = g.Wait()

	synced := SyncedTo(outcomes)
	switch {
	case len(synced) == 0:
		pushErr := &PushError{Outcomes: outcomes}
		c.log.Error("push failed on every endpoint", "error", pushErr)
		return outcomes, pushErr
	case len(synced) < len(outcomes):
		c.log.Warn("push partially failed", "synced", len(synced), "endpoints", len(outcomes))
	default:
		c.log.Debug("push succeeded", "endpoints", len(outcomes))
	}

	return outcomes, nil
}

func (c *Coordinator) pushOne(ctx context.Context, ep Endpoint, doc json.RawMessage) Outcome {
	out := Outcome{Endpoint: ep.Name()}
	if ep.Identity() == "" {
		out.Err = ErrNoIdentity
		c.observe(ep.Name(), false, 0)
		return out
	}

	start := time.Now()
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := ep.Put(callCtx, doc); err != nil {
		out.Err = err
		c.log.Warn("push to endpoint failed", "endpoint", ep.Name(), "error", err)
	}
	c.observe(ep.Name(), out.Err == nil, time.Since(start))

	return out
}

// Pull decodes into v the first document found, trying endpoints in configured
// order. It returns the endpoint that answered, or ErrNotFound.
func (c *Coordinator) Pull(ctx context.Context, v any) (string, error) {
	if c.Identity() == nil {
		return "", ErrNotFound
	}

	for _, ep := range c.endpoints {
		if ep.Identity() == "" {
			continue
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		doc, err := ep.Get(callCtx)
		cancel()
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				c.log.Warn("pull from endpoint failed", "endpoint", ep.Name(), "error", err)
			}
			continue
		}

		if err := json.Unmarshal(doc, v); err != nil {
			c.log.Warn("endpoint returned undecodable document", "endpoint", ep.Name(), "error", err)
			continue
		}
		return ep.Name(), nil
	}

	return "", ErrNotFound
}

func (c *Coordinator) observe(endpoint string, ok bool, took time.Duration) {
	if c.observer != nil {
		c.observer.ObservePush(endpoint, ok, took)
	}
}
