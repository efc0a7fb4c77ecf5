package vigil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"vigil/internal/domain/geo"
)

// coordinates of real zipcodes, as returned by the geocoder
var knownZipcodes = map[string]geo.Coordinate{
	"55408": {Latitude: 44.9469, Longitude: -93.2913}, // Minneapolis, Uptown
	"55406": {Latitude: 44.9384, Longitude: -93.2216}, // Minneapolis, Longfellow (~3.5 mi)
	"55401": {Latitude: 44.9835, Longitude: -93.2683}, // Minneapolis, downtown (~2.8 mi)
	"55101": {Latitude: 44.9517, Longitude: -93.0897}, // Saint Paul (~9.9 mi)
	"55901": {Latitude: 44.0654, Longitude: -92.5388}, // Rochester (~71 mi)
}

type mapResolver struct {
	coords map[string]geo.Coordinate
	calls  int
}

func (m *mapResolver) Resolve(_ context.Context, zipcode string) (geo.Coordinate, error) {
	m.calls++
	c, ok := m.coords[zipcode]
	if !ok {
		return geo.Coordinate{}, geo.ErrNotFound
	}
	return c, nil
}

func storeWith(t *testing.T, zipcodes ...string) *Store {
	t.Helper()
	s := NewStore()
	for _, z := range zipcodes {
		f := sampleFields()
		f.Zipcode = z
		f.Location = "vigil at " + z
		s.Create(f)
	}
	return s
}

func TestFindNear_Scenario(t *testing.T) {
	s := NewStore()
	s.Create(Fields{Zipcode: "55408", Location: "George Floyd Square", Date: "2025-01-15", Time: "18:00"})
	searcher := NewSearcher(s, &mapResolver{coords: knownZipcodes}, geo.SearchRadiusMiles, slog.Default())

	near, err := searcher.FindNear(context.Background(), "55406")
	require.NoError(t, err)
	require.Len(t, near, 1)
	assert.Equal(t, "George Floyd Square", near[0].Location)
	assert.Greater(t, near[0].Distance, 0.0)
	assert.LessOrEqual(t, near[0].Distance, 10.0)

	far, err := searcher.FindNear(context.Background(), "55901")
	require.NoError(t, err)
	assert.Empty(t, far)
}

func TestFindNear_RadiusControlsInclusion(t *testing.T) {
	s := storeWith(t, "55408")
	resolver := &mapResolver{coords: knownZipcodes}

	wide := NewSearcher(s, resolver, 10, slog.Default())
	got, err := wide.FindNear(context.Background(), "55406")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	narrow := NewSearcher(s, resolver, 1, slog.Default())
	got, err = narrow.FindNear(context.Background(), "55406")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindNear_SortedAscending(t *testing.T) {
	s := storeWith(t, "55101", "55408", "55406", "55401", "55901")
	searcher := NewSearcher(s, &mapResolver{coords: knownZipcodes}, 10, slog.Default())

	got, err := searcher.FindNear(context.Background(), "55408")
	require.NoError(t, err)
	require.Len(t, got, 4)

	var zips []string
	for i, r := range got {
		zips = append(zips, r.Zipcode)
		if i > 0 {
			assert.LessOrEqual(t, got[i-1].Distance, r.Distance)
		}
	}
	assert.Equal(t, []string{"55408", "55401", "55406", "55101"}, zips)
	assert.Equal(t, 0.0, got[0].Distance)
}

func TestFindNear_TiesKeepEnumerationOrder(t *testing.T) {
	s := storeWith(t, "55406", "55406", "55406")
	searcher := NewSearcher(s, &mapResolver{coords: knownZipcodes}, 10, slog.Default())

	got, err := searcher.FindNear(context.Background(), "55408")
	require.NoError(t, err)
	require.Len(t, got, 3)

	listed := s.List()
	for i := range got {
		assert.Equal(t, listed[i].UUID, got[i].UUID)
	}
}

func TestFindNear_SkipsUnresolvableRecords(t *testing.T) {
	s := storeWith(t, "55406", "00000")
	searcher := NewSearcher(s, &mapResolver{coords: knownZipcodes}, 10, slog.Default())

	got, err := searcher.FindNear(context.Background(), "55408")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "55406", got[0].Zipcode)
}

func TestFindNear_InvalidZipcode(t *testing.T) {
	resolver := &mapResolver{coords: knownZipcodes}
	searcher := NewSearcher(storeWith(t, "55408"), resolver, 10, slog.Default())

	_, err := searcher.FindNear(context.Background(), "abcde")
	assert.ErrorIs(t, err, ErrInvalidZipcode)
	assert.Equal(t, 0, resolver.calls, "format is checked before resolving")

	_, err = searcher.FindNear(context.Background(), "99999")
	assert.ErrorIs(t, err, ErrInvalidZipcode)
}

func TestNewSearcher_DefaultRadius(t *testing.T) {
	searcher := NewSearcher(NewStore(), &mapResolver{}, 0, slog.Default())
	assert.Equal(t, geo.SearchRadiusMiles, searcher.Radius())
}
