package geo

import (
	"context"
	"fmt"

	"golang.org/x/exp/slog"
)

// Geocoder performs the external zipcode lookup.
type Geocoder interface {
	Lookup(ctx context.Context, zipcode string) (*ZipInfo, error)
}

// ZipInfo is what the upstream geocoding service knows about a zipcode.
type ZipInfo struct {
	PostCode    string  `json:"postCode"`
	Country     string  `json:"country"`
	CountryCode string  `json:"countryCode"`
	Places      []Place `json:"places"`
}

type Place struct {
	Name      string  `json:"name"`
	State     string  `json:"state"`
	StateCode string  `json:"stateCode"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Coordinate returns the coordinate of the first place.
func (z *ZipInfo) Coordinate() (Coordinate, bool) {
	if z == nil || len(z.Places) == 0 {
		return Coordinate{}, false
	}
	p := z.Places[0]
	return Coordinate{Latitude: p.Latitude, Longitude: p.Longitude}, true
}

// Observer receives resolver events. Used for metrics.
type Observer interface {
	ObserveResolve(result string)
}

// Resolve results reported to Observer.
const (
	ResultHit  = "hit"
	ResultMiss = "miss"
	ResultFail = "fail"
)

// Resolver turns zipcodes into coordinates, memoizing successful lookups.
// It does not validate zipcode format; callers do.
type Resolver struct {
	geocoder Geocoder
	cache    Cache
	observer Observer
	log      *slog.Logger
}

func NewResolver(geocoder Geocoder, cache Cache, log *slog.Logger) *Resolver {
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &Resolver{
		geocoder: geocoder,
		cache:    cache,
		log:      log.With("component", "geo_resolver"),
	}
}

// WithObserver attaches an event observer and returns the resolver.
func (r *Resolver) WithObserver(o Observer) *Resolver {
	r.observer = o
	return r
}

// Resolve returns the coordinate for zipcode, or ErrNotFound.
// Failures are not cached so a later call may succeed.
func (r *Resolver) Resolve(ctx context.Context, zipcode string) (Coordinate, error) {
	if c, ok := r.cache.Get(zipcode); ok {
		r.observe(ResultHit)
		return c, nil
	}

	info, err := r.geocoder.Lookup(ctx, zipcode)
	if err != nil {
		r.observe(ResultFail)
		r.log.Debug("zipcode lookup failed", "zipcode", zipcode, "error", err)
		return Coordinate{}, fmt.Errorf("resolve %s: %w", zipcode, ErrNotFound)
	}

	c, ok := info.Coordinate()
	if !ok {
		r.observe(ResultFail)
		r.log.Debug("zipcode lookup returned no places", "zipcode", zipcode)
		return Coordinate{}, fmt.Errorf("resolve %s: %w", zipcode, ErrNotFound)
	}

	r.cache.Set(zipcode, c)
	r.observe(ResultMiss)

	return c, nil
}

// Lookup returns the full upstream record for zipcode. A successful lookup
// also warms the coordinate cache.
func (r *Resolver) Lookup(ctx context.Context, zipcode string) (*ZipInfo, error) {
	info, err := r.geocoder.Lookup(ctx, zipcode)
	if err != nil {
		return nil, err
	}
	if c, ok := info.Coordinate(); ok {
		r.cache.Set(zipcode, c)
	}
	return info, nil
}

func (r *Resolver) observe(result string) {
	if r.observer != nil {
		r.observer.ObserveResolve(result)
	}
}
