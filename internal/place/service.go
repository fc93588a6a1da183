package place

import (
	"context"
	"runtime/debug"

	"go.uber.org/zap"
)

// CoordinateOptions tunes a coordinate lookup.
type CoordinateOptions struct {
	// EPSG is the reference system of the coordinate. Empty means the
	// service default.
	EPSG string
}

// NameOptions tunes a name search.
type NameOptions struct {
	// Limit caps the number of results. Zero means the service default.
	Limit int
	// EPSG is the reference system of the returned coordinates.
	EPSG string
}

// Service is the lookup facade used by the CLI and the HTTP server.
type Service struct {
	aggregator *Aggregator
	pipeline   *SearchPipeline
	settings   settings
}

// NewService wires an Aggregator and a SearchPipeline over src.
func NewService(src Sources, opts ...Option) *Service {
	return &Service{
		aggregator: NewAggregator(src, opts...),
		pipeline:   NewSearchPipeline(src, opts...),
		settings:   newSettings(opts),
	}
}

// SearchByCoordinates describes the place at coord. Individual source
// failures only thin out the result. It returns nil only when the lookup
// fails unexpectedly.
func (s *Service) SearchByCoordinates(ctx context.Context, coord Coordinate, opts CoordinateOptions) (f *Feature) {
	defer func() {
		if r := recover(); r != nil {
			s.settings.diagnose("place: coordinate search failed", recovered(r))
			f = nil
		}
	}()

	feature, err := s.aggregator.Aggregate(ctx, coord, opts.EPSG)
	if err != nil {
		s.settings.diagnose("place: coordinate search failed", err,
			zap.Float64("lat", coord.Latitude), zap.Float64("lon", coord.Longitude))
		return nil
	}
	return &feature
}

// SearchByName returns the places matching query. It never returns a nil
// feature list.
func (s *Service) SearchByName(ctx context.Context, query string, opts NameOptions) (fc FeatureCollection) {
	defer func() {
		if r := recover(); r != nil {
			s.settings.diagnose("place: name search failed", recovered(r))
			fc = FeatureCollection{Features: []Feature{}}
		}
	}()

	fc, err := s.pipeline.Search(ctx, query, opts.Limit, opts.EPSG)
	if err != nil {
		s.settings.diagnose("place: name search failed", err, zap.String("query", query))
		return FeatureCollection{Features: []Feature{}}
	}
	return fc
}

func recovered(r any) error {
	return &PanicError{Source: "service", Value: r, Stack: debug.Stack()}
}
