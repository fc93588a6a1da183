package place

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sells-group/placelookup/pkg/geonorge"
)

// SearchPipeline answers a name query: it searches the place source, maps
// every hit to a feature and enriches each feature with its elevation.
type SearchPipeline struct {
	places    PlaceSource
	elevation ElevationSource
	settings  settings
}

// NewSearchPipeline returns a SearchPipeline over the given sources. Only
// the place and elevation sources are used.
func NewSearchPipeline(src Sources, opts ...Option) *SearchPipeline {
	return &SearchPipeline{
		places:    src.Places,
		elevation: src.Elevation,
		settings:  newSettings(opts),
	}
}

// Search returns at most limit features for query, in the order the place
// source ranked them. A limit of zero or less uses the configured default.
// The collection is never nil; when the search itself fails it is empty.
// A failed elevation lookup leaves that feature two-dimensional. The
// returned error is non-nil only when a lookup panicked.
func (p *SearchPipeline) Search(ctx context.Context, query string, limit int, epsg string) (FeatureCollection, error) {
	empty := FeatureCollection{Features: []Feature{}}

	query = strings.TrimSpace(query)
	if query == "" || p.places == nil {
		return empty, nil
	}
	if limit <= 0 {
		limit = p.settings.searchLimit
	}
	epsg = p.settings.resolveEPSG(epsg)

	var places []geonorge.Place
	err := p.settings.track(SourcePlaces, func() error {
		var err error
		places, err = p.places.SearchPlaces(ctx, geonorge.NameQuery{Text: query, Limit: limit, EPSG: epsg})
		return err
	})
	if err != nil {
		return empty, panicOnly(err)
	}
	if len(places) > limit {
		places = places[:limit]
	}

	features := make([]Feature, len(places))
	for i, pl := range places {
		c := candidateFromPlace(pl)
		features[i] = Feature{Coordinate: c.Coordinate, Properties: c.properties()}
	}

	if p.elevation != nil {
		if err := p.enrich(ctx, features, epsg); err != nil {
			return empty, err
		}
	}
	return FeatureCollection{Features: features}, nil
}

// enrich fills in elevations in place. Each goroutine writes only its own
// slot, so the output order is the input order.
func (p *SearchPipeline) enrich(ctx context.Context, features []Feature, epsg string) error {
	var eg errgroup.Group
	eg.SetLimit(p.settings.enrichConcurrency)

	for i := range features {
		eg.Go(func() error {
			err := p.settings.track(SourceElevation, func() error {
				e, err := p.elevation.Elevation(ctx, features[i].Coordinate.point(epsg))
				if err != nil {
					return err
				}
				features[i].Elevation = elevationFrom(e).Meters
				return nil
			})
			return panicOnly(err)
		})
	}
	return eg.Wait()
}
