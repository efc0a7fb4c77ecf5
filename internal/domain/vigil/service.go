package vigil

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/exp/slog"

	"vigil/internal/domain/replication"
)

// Replicator pushes and pulls the whole snapshot.
type Replicator interface {
	Push(ctx context.Context, v any) ([]replication.Outcome, error)
	Pull(ctx context.Context, v any) (string, error)
}

type Servicer interface {
	Create(ctx context.Context, f Fields) (*CreateResult, error)
	Find(ctx context.Context, id string) (*Vigil, error)
	Delete(ctx context.Context, id string) (*DeleteResult, error)
	List(ctx context.Context) Snapshot
	Counts(ctx context.Context) Counts
	Search(ctx context.Context, zipcode string) (*SearchResult, error)
	Hydrate(ctx context.Context) error
}

type CreateResult struct {
	Vigil       Vigil
	SyncedTo    []string
	TotalVigils int
}

type DeleteResult struct {
	UUID            string
	SyncedTo        []string
	RemainingVigils int
}

type SearchResult struct {
	Zipcode      string
	SearchRadius float64
	Vigils       []Ranked
}

type Counts struct {
	Total int
	Today int
}

// ReplicationError is returned when a change was applied locally but no replica accepted it.
type ReplicationError struct {
	Reasons map[string]string
	err     error
}

func (e *ReplicationError) Error() string {
	if e.err == nil {
		return ErrReplication.Error()
	}
	return fmt.Sprintf("%s: %v", ErrReplication, e.err)
}

func (e *ReplicationError) Unwrap() []error {
	if e.err == nil {
		return []error{ErrReplication}
	}
	return []error{ErrReplication, e.err}
}

type Service struct {
	// mu orders mutations with the push of the snapshot they produced, so an
	// older snapshot never lands on a replica after a newer one.
	mu sync.Mutex

	store      *Store
	searcher   *Searcher
	replicator Replicator
	log        *slog.Logger
}

func NewService(store *Store, searcher *Searcher, replicator Replicator, log *slog.Logger) *Service {
	return &Service{
		store:      store,
		searcher:   searcher,
		replicator: replicator,
		log:        log.With("component", "vigil_service"),
	}
}

// Create validates and stores a vigil, then replicates the snapshot.
func (s *Service) Create(ctx context.Context, f Fields) (*CreateResult, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.store.Create(f)
	s.log.Info("vigil created", "uuid", v.UUID, "zipcode", v.Zipcode)

	synced, err := s.sync(ctx)
	if err != nil {
		return nil, err
	}

	return &CreateResult{
		Vigil:       v,
		SyncedTo:    synced,
		TotalVigils: s.store.Count(),
	}, nil
}

func (s *Service) Find(_ context.Context, id string) (*Vigil, error) {
	v, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Delete removes a vigil and replicates the snapshot.
func (s *Service) Delete(ctx context.Context, id string) (*DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(id); err != nil {
		return nil, err
	}
	s.log.Info("vigil deleted", "uuid", id)

	synced, err := s.sync(ctx)
	if err != nil {
		return nil, err
	}

	return &DeleteResult{
		UUID:            id,
		SyncedTo:        synced,
		RemainingVigils: s.store.Count(),
	}, nil
}

func (s *Service) List(_ context.Context) Snapshot {
	return s.store.Snapshot()
}

func (s *Service) Counts(_ context.Context) Counts {
	return Counts{
		Total: s.store.Count(),
		Today: s.store.CountToday(),
	}
}

func (s *Service) Search(ctx context.Context, zipcode string) (*SearchResult, error) {
	ranked, err := s.searcher.FindNear(ctx, zipcode)
	if err != nil {
		return nil, err
	}
	return &SearchResult{
		Zipcode:      zipcode,
		SearchRadius: s.searcher.Radius(),
		Vigils:       ranked,
	}, nil
}

// Hydrate loads the store from the first replica holding a snapshot.
// A missing snapshot leaves the store empty and is not an error.
func (s *Service) Hydrate(ctx context.Context) error {
	var snap Snapshot
	from, err := s.replicator.Pull(ctx, &snap)
	if err != nil {
		if errors.Is(err, replication.ErrNotFound) {
			s.log.Info("no remote snapshot, starting empty")
			return nil
		}
		return fmt.Errorf("pull snapshot: %w", err)
	}

	s.mu.Lock()
	s.store.Restore(snap)
	s.mu.Unlock()
	s.log.Info("store hydrated", "endpoint", from, "vigils", s.store.Count())
	return nil
}

func (s *Service) sync(ctx context.Context) ([]string, error) {
	outcomes, err := s.replicator.Push(ctx, s.store.Snapshot())
	if err != nil {
		rerr := &ReplicationError{err: err}
		var pushErr *replication.PushError
		if errors.As(err, &pushErr) {
			rerr.Reasons = pushErr.Reasons()
		}
		s.log.Error("snapshot not replicated", "error", err)
		return nil, rerr
	}
	return replication.SyncedTo(outcomes), nil
}
