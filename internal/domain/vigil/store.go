package vigil

import (
	"sort"
	"sync"
	"time"
)

// Store is the in-process vigil set. All mutations and snapshot reads are serialized.
type Store struct {
	mu          sync.RWMutex
	vigils      map[string]Vigil
	lastUpdated int64
	total       int

	ids IDGenerator
	now func() time.Time
}

type StoreOption func(*Store)

func WithIDGenerator(g IDGenerator) StoreOption {
	return func(s *Store) { s.ids = g }
}

func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		vigils: make(map[string]Vigil),
		ids:    UUIDGenerator{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a new vigil from already validated fields.
func (s *Store) Create(f Fields) Vigil {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.ids.NewID()
	for _, exists := s.vigils[id]; exists; _, exists = s.vigils[id] {
		id = s.ids.NewID()
	}

	organizer := f.Organizer
	if organizer == "" {
		organizer = AnonymousOrganizer
	}

	v := Vigil{
		UUID:        id,
		Zipcode:     f.Zipcode,
		Location:    f.Location,
		Date:        f.Date,
		Time:        f.Time,
		Description: f.Description,
		Contact:     f.Contact,
		Organizer:   organizer,
		CreatedAt:   s.now().UnixMilli(),
	}
	s.vigils[id] = v
	s.touch()

	return v
}

func (s *Store) Get(id string) (Vigil, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.vigils[id]
	if !ok {
		return Vigil{}, ErrNotFound
	}
	return v, nil
}

// Delete removes a vigil; a missing id is ErrNotFound.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vigils[id]; !ok {
		return ErrNotFound
	}
	delete(s.vigils, id)
	s.touch()

	return nil
}

// List returns every vigil ordered by creation time.
func (s *Store) List() []Vigil {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Vigil, 0, len(s.vigils))
	for _, v := range s.vigils {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].UUID < out[j].UUID
	})
	return out
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.total
}

// CountToday counts vigils dated on the current local calendar date.
func (s *Store) CountToday() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	today := s.now().Format(DateLayout)
	n := 0
	for _, v := range s.vigils {
		if v.Date == today {
			n++
		}
	}
	return n
}

// Snapshot returns a copy of the whole store.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vigils := make(map[string]Vigil, len(s.vigils))
	for id, v := range s.vigils {
		vigils[id] = v
	}
	return Snapshot{
		Vigils:      vigils,
		LastUpdated: s.lastUpdated,
		TotalVigils: s.total,
	}
}

// Restore replaces the store content. The count is recomputed rather than trusted.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.vigils = make(map[string]Vigil, len(snap.Vigils))
	for id, v := range snap.Vigils {
		if v.UUID == "" {
			v.UUID = id
		}
		s.vigils[id] = v
	}
	s.total = len(s.vigils)
	s.lastUpdated = snap.LastUpdated
}

// touch must be called with mu held.
func (s *Store) touch() {
	s.total = len(s.vigils)
	s.lastUpdated = s.now().UnixMilli()
}
