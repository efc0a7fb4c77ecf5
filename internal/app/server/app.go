package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/exp/slog"

	"vigil/internal/app/server/api"
	"vigil/internal/app/server/config"
	"vigil/internal/app/server/metrics"
	"vigil/internal/domain/admin"
	"vigil/internal/domain/geo"
	"vigil/internal/domain/identity"
	"vigil/internal/domain/replication"
	"vigil/internal/domain/vigil"
	"vigil/internal/infrastructure/bdo"
	"vigil/internal/infrastructure/geocoder"
	"vigil/internal/infrastructure/storage"
	"vigil/internal/infrastructure/storage/postgres"
	"vigil/internal/infrastructure/storage/sqlite"
)

// App is the assembled service: credential, replicas, store and HTTP server.
type App struct {
	cfg         *config.Config
	log         *slog.Logger
	credentials *identity.FileStore
	coordinator *replication.Coordinator
	service     *vigil.Service
	store       *vigil.Store
	metrics     *metrics.Metrics
	closers     []io.Closer
	server      *http.Server
}

// Options override collaborators, mostly for tests.
type Options struct {
	Geocoder  geo.Geocoder
	Endpoints func(ctx context.Context, cred *identity.Credential) ([]replication.Endpoint, []io.Closer, error)
}

// New loads the credential, bootstraps replication and hydrates the store.
// Replication failures leave the app running in degraded mode.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger, opts Options) (*App, error) {
	a := &App{
		cfg:         cfg,
		log:         log.With("component", "app"),
		credentials: identity.NewFileStore(cfg.Replication.CredentialPath),
		metrics:     metrics.New(),
	}

	cred, err := a.loadCredential()
	if err != nil {
		return nil, err
	}

	buildEndpoints := opts.Endpoints
	if buildEndpoints == nil {
		buildEndpoints = a.buildEndpoints
	}
	endpoints, closers, err := buildEndpoints(ctx, cred)
	if err != nil {
		return nil, err
	}
	a.closers = closers

	a.coordinator = replication.NewCoordinator(endpoints, cfg.Replication.Timeout, log).
		WithObserver(a.metrics).
		WithRetryInterval(cfg.Replication.RetryInterval).
		OnIdentity(func(id replication.Identity) error {
			return a.persistIdentity(cred, id)
		})
	if err := a.bootstrap(ctx, cred); err != nil {
		a.Close()
		return nil, err
	}

	gc := opts.Geocoder
	if gc == nil {
		gc = geocoder.NewZippopotam(cfg.Geocoder.URL, cfg.Geocoder.UserAgent, cfg.Geocoder.Timeout)
	}
	resolver := geo.NewResolver(gc, geo.NewMemoryCache(), log).WithObserver(a.metrics)

	a.store = vigil.NewStore()
	searcher := vigil.NewSearcher(a.store, resolver, cfg.Search.RadiusMiles, log)
	a.service = vigil.NewService(a.store, searcher, a.coordinator, log)
	a.metrics.WatchVigils(a.store.Count)

	if err := a.service.Hydrate(ctx); err != nil {
		a.log.Warn("starting with an empty store", "error", err)
	}

	router := api.New(api.Deps{
		Vigils:      a.service,
		Identity:    a.coordinator,
		Replication: a.coordinator,
		Zipcodes:    resolver,
		Admin:       admin.NewAuthorizer(cfg.Admin.PublicKey, cfg.Admin.Window),
		Metrics:     a.metrics,
	}, log)

	a.server = &http.Server{
		Addr:              cfg.Server.RunAddress,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if cfg.Admin.PublicKey == "" {
		a.log.Warn("admin_public_key is not set, admin routes are disabled")
	}
	return a, nil
}

func (a *App) loadCredential() (*identity.Credential, error) {
	cred, err := a.credentials.Load()
	switch {
	case err == nil:
		a.log.Info("loaded credential", "path", a.credentials.Path(), "pub_key", cred.PublicKey(), "uuid", cred.Identity)
		return cred, nil
	case errors.Is(err, identity.ErrNoCredential):
		cred, err = identity.Generate()
		if err != nil {
			return nil, err
		}
		a.log.Info("generated new credential", "pub_key", cred.PublicKey())
		return cred, nil
	default:
		return nil, fmt.Errorf("load credential: %w", err)
	}
}

// bootstrap adopts or creates the remote identity and persists a new one.
func (a *App) bootstrap(ctx context.Context, cred *identity.Credential) error {
	id, err := a.coordinator.Bootstrap(ctx, cred)
	if errors.Is(err, replication.ErrNoIdentity) {
		a.log.Warn("replication degraded, changes stay in memory until restart")
		return nil
	}
	if err != nil {
		return fmt.Errorf("bootstrap replication: %w", err)
	}

	if id.Created {
		return a.persistIdentity(cred, id)
	}
	return nil
}

func (a *App) persistIdentity(cred *identity.Credential, id replication.Identity) error {
	if err := a.credentials.Save(cred, id.Primary, id.Endpoints); err != nil {
		return fmt.Errorf("persist credential: %w", err)
	}
	a.log.Info("persisted credential", "path", a.credentials.Path(), "uuid", id.Primary)
	return nil
}

func (a *App) buildEndpoints(ctx context.Context, cred *identity.Credential) ([]replication.Endpoint, []io.Closer, error) {
	var (
		endpoints []replication.Endpoint
		closers   []io.Closer
	)
	addReplica := func(r storage.Replica) {
		endpoints = append(endpoints, r)
		closers = append(closers, r)
	}

	for _, spec := range a.cfg.Replication.Replicas {
		name := spec.String()
		switch spec.Kind {
		case config.ReplicaBDO:
			endpoints = append(endpoints, bdo.New(name, spec.Target, a.cfg.Replication.Hash, cred, a.cfg.Replication.Timeout))

		case config.ReplicaSQLite:
			if dir := filepath.Dir(spec.Target); dir != "" {
				if err := os.MkdirAll(dir, 0o700); err != nil {
					return nil, nil, fmt.Errorf("replica %s: %w", name, err)
				}
			}
			r, err := sqlite.New(name, spec.Target, cred)
			if err != nil {
				return nil, nil, fmt.Errorf("replica %s: %w", name, err)
			}
			addReplica(r)

		case config.ReplicaPostgres:
			dsn := spec.Target
			if dsn == config.UseDatabaseURI {
				dsn = a.cfg.DB.DatabaseURI
			}
			s, err := postgres.New(ctx, dsn, a.cfg.DB.Migrations)
			if err != nil {
				a.log.Warn("skipping unreachable postgres replica", "endpoint", name, "error", err)
				continue
			}
			addReplica(postgres.NewReplica(name, s, cred))
		}
	}

	if len(endpoints) == 0 {
		return nil, nil, errors.New("no usable replica endpoint")
	}
	return endpoints, closers, nil
}

// Handler exposes the router, mostly for tests.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.log.Info("listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.log.Info("server stopped")
	return nil
}

// Close releases replica connections.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
