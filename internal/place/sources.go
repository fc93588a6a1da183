package place

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/placelookup/pkg/geonorge"
)

// Lookup source labels, used in logs and metrics.
const (
	SourceAdminUnits = "admin_units"
	SourceElevation  = "elevation"
	SourcePlaces     = "places"
)

// ElevationSource resolves the terrain height at a point.
type ElevationSource interface {
	Elevation(ctx context.Context, p geonorge.Point) (*geonorge.Elevation, error)
}

// AdminUnitSource resolves the county and municipality containing a point.
type AdminUnitSource interface {
	Municipality(ctx context.Context, p geonorge.Point) (*geonorge.Municipality, error)
}

// PlaceSource finds named places near a point or by name.
type PlaceSource interface {
	PlacesNear(ctx context.Context, p geonorge.Point) ([]geonorge.Place, error)
	SearchPlaces(ctx context.Context, q geonorge.NameQuery) ([]geonorge.Place, error)
}

// Sources bundles the upstream services a lookup consults.
type Sources struct {
	AdminUnits AdminUnitSource
	Elevation  ElevationSource
	Places     PlaceSource
}

// Observer receives the outcome of every upstream lookup.
type Observer interface {
	ObserveLookup(source, outcome string, elapsed time.Duration)
}

type noopObserver struct{}

func (noopObserver) ObserveLookup(string, string, time.Duration) {}

// PanicError reports a panic raised while a lookup was running.
type PanicError struct {
	Source string
	Value  any
	Stack  []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("place: panic in %s lookup: %v", e.Source, e.Value)
}

// Option configures a Service, Aggregator or SearchPipeline.
type Option func(*settings)

type settings struct {
	epsg              string
	searchLimit       int
	enrichConcurrency int
	diagnostics       bool
	observer          Observer
}

func newSettings(opts []Option) settings {
	s := settings{
		epsg:              geonorge.DefaultEPSG,
		searchLimit:       geonorge.DefaultSearchLimit,
		enrichConcurrency: 10,
		observer:          noopObserver{},
	}
	for _, o := range opts {
		o(&s)
	}
	return s
}

// WithDefaultEPSG sets the reference system used when a request names none.
func WithDefaultEPSG(code string) Option {
	return func(s *settings) {
		if code != "" {
			s.epsg = code
		}
	}
}

// WithSearchLimit sets the result limit used when a name search names none.
func WithSearchLimit(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.searchLimit = n
		}
	}
}

// WithEnrichConcurrency bounds the number of elevation lookups a name
// search runs at once.
func WithEnrichConcurrency(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.enrichConcurrency = n
		}
	}
}

// WithDiagnostics enables warning logs for swallowed lookup failures.
func WithDiagnostics(enabled bool) Option {
	return func(s *settings) {
		s.diagnostics = enabled
	}
}

// WithObserver registers a lookup observer, typically a metrics collector.
func WithObserver(o Observer) Option {
	return func(s *settings) {
		if o != nil {
			s.observer = o
		}
	}
}

func (s settings) resolveEPSG(code string) string {
	if code == "" {
		return s.epsg
	}
	return code
}

// track runs one upstream lookup, converting a panic into a *PanicError and
// reporting the outcome.
func (s settings) track(source string, fn func() error) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Source: source, Value: r, Stack: debug.Stack()}
		}
		s.report(source, err, time.Since(start))
	}()
	return fn()
}

// report records a finished lookup. A panic while observing or logging is
// logged and dropped so it never escapes the lookup goroutine.
func (s settings) report(source string, err error, elapsed time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("place: lookup report failed",
				zap.String("source", source),
				zap.Any("panic", r),
			)
		}
	}()
	s.observer.ObserveLookup(source, outcome(err), elapsed)
	if err != nil {
		s.diagnose("place: lookup failed", err, zap.String("source", source))
	}
}

func (s settings) diagnose(msg string, err error, fields ...zap.Field) {
	if !s.diagnostics {
		return
	}
	fields = append(fields,
		zap.String("kind", outcome(err)),
		zap.Bool("network", geonorge.IsNetworkError(err)),
		zap.Error(err),
	)
	zap.L().Warn(msg, fields...)
}

// outcome labels a lookup result.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case isPanic(err):
		return "panic"
	case errors.Is(err, ErrNoCandidates):
		return geonorge.KindEmpty.String()
	default:
		return geonorge.KindOf(err).String()
	}
}

func isPanic(err error) bool {
	var pe *PanicError
	return errors.As(err, &pe)
}
