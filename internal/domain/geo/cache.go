package geo

import "sync"

// Cache memoizes zipcode coordinates. Implementations must be safe for concurrent use.
type Cache interface {
	Get(zipcode string) (Coordinate, bool)
	Set(zipcode string, c Coordinate)
	Len() int
}

// MemoryCache is an unbounded, never-invalidated cache.
// The zipcode to location mapping is treated as immutable.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string]Coordinate
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		data: make(map[string]Coordinate),
	}
}

func (m *MemoryCache) Get(zipcode string) (Coordinate, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.data[zipcode]
	return c, ok
}

func (m *MemoryCache) Set(zipcode string, c Coordinate) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[zipcode] = c
}

func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.data)
}
