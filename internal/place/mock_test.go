package place

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/mock"

	"github.com/sells-group/placelookup/pkg/geonorge"
)

// mockElevation implements ElevationSource for testing.
type mockElevation struct {
	mock.Mock
}

func (m *mockElevation) Elevation(ctx context.Context, p geonorge.Point) (*geonorge.Elevation, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*geonorge.Elevation), args.Error(1)
}

// mockAdminUnits implements AdminUnitSource for testing.
type mockAdminUnits struct {
	mock.Mock
}

func (m *mockAdminUnits) Municipality(ctx context.Context, p geonorge.Point) (*geonorge.Municipality, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*geonorge.Municipality), args.Error(1)
}

// mockPlaces implements PlaceSource for testing.
type mockPlaces struct {
	mock.Mock
}

func (m *mockPlaces) PlacesNear(ctx context.Context, p geonorge.Point) ([]geonorge.Place, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]geonorge.Place), args.Error(1)
}

func (m *mockPlaces) SearchPlaces(ctx context.Context, q geonorge.NameQuery) ([]geonorge.Place, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]geonorge.Place), args.Error(1)
}

// panickingElevation panics on every call.
type panickingElevation struct{}

func (panickingElevation) Elevation(context.Context, geonorge.Point) (*geonorge.Elevation, error) {
	panic("boom")
}

// recordingObserver collects lookup outcomes.
type recordingObserver struct {
	mu       sync.Mutex
	outcomes map[string][]string
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{outcomes: make(map[string][]string)}
}

func (r *recordingObserver) ObserveLookup(source, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes[source] = append(r.outcomes[source], outcome)
}

func (r *recordingObserver) get(source string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.outcomes[source]...)
}

func unavailable(service string) error {
	return &geonorge.UpstreamError{
		Service:    service,
		Kind:       geonorge.KindUnavailable,
		StatusCode: 503,
		Err:        eris.Errorf("geonorge: %s returned status 503", service),
	}
}

// brokenError panics when formatted.
type brokenError struct{}

func (brokenError) Error() string { panic("cannot format error") }

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }
