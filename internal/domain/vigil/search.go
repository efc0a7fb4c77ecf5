package vigil

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/exp/slog"

	"vigil/internal/domain/geo"
)

// Resolver resolves zipcodes to coordinates.
type Resolver interface {
	Resolve(ctx context.Context, zipcode string) (geo.Coordinate, error)
}

// Lister enumerates stored vigils.
type Lister interface {
	List() []Vigil
}

// Searcher ranks stored vigils by distance from a zipcode.
type Searcher struct {
	vigils   Lister
	resolver Resolver
	radius   float64
	log      *slog.Logger
}

func NewSearcher(vigils Lister, resolver Resolver, radius float64, log *slog.Logger) *Searcher {
	if radius <= 0 {
		radius = geo.SearchRadiusMiles
	}
	return &Searcher{
		vigils:   vigils,
		resolver: resolver,
		radius:   radius,
		log:      log.With("component", "vigil_search"),
	}
}

func (s *Searcher) Radius() float64 {
	return s.radius
}

// FindNear returns vigils within the radius of zipcode, nearest first.
// Vigils whose own zipcode cannot be resolved are left out of the result.
func (s *Searcher) FindNear(ctx context.Context, zipcode string) ([]Ranked, error) {
	if !ValidZipcode(zipcode) {
		return nil, ErrInvalidZipcode
	}

	origin, err := s.resolver.Resolve(ctx, zipcode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidZipcode, err)
	}

	type hit struct {
		vigil    Vigil
		distance float64
	}
	var hits []hit

	for _, v := range s.vigils.List() {
		c, err := s.resolver.Resolve(ctx, v.Zipcode)
		if err != nil {
			s.log.Debug("skipping vigil with unresolvable zipcode", "uuid", v.UUID, "zipcode", v.Zipcode)
			continue
		}
		d := geo.DistanceMiles(origin, c)
		if geo.WithinRadius(d, s.radius) {
			hits = append(hits, hit{vigil: v, distance: d})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].distance < hits[j].distance
	})

	out := make([]Ranked, len(hits))
	for i, h := range hits {
		out[i] = Ranked{Vigil: h.vigil, Distance: geo.RoundMiles(h.distance)}
	}
	return out, nil
}
