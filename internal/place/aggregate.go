package place

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Aggregator answers a coordinate lookup by querying the admin unit,
// elevation and place sources concurrently and merging what comes back.
type Aggregator struct {
	sources  Sources
	settings settings
}

// NewAggregator returns an Aggregator over the given sources.
func NewAggregator(src Sources, opts ...Option) *Aggregator {
	return &Aggregator{sources: src, settings: newSettings(opts)}
}

// Aggregate resolves coord to a feature. A failing source only removes the
// fields it would have supplied, so when every source fails the feature
// carries the input coordinate and nothing else. The returned error is
// non-nil only when a lookup panicked.
func (a *Aggregator) Aggregate(ctx context.Context, coord Coordinate, epsg string) (Feature, error) {
	pt := coord.point(a.settings.resolveEPSG(epsg))

	var (
		admin     *AdminUnit
		elevation ElevationInfo
		candidate *Candidate
	)

	var eg errgroup.Group

	if src := a.sources.AdminUnits; src != nil {
		eg.Go(func() error {
			err := a.settings.track(SourceAdminUnits, func() error {
				m, err := src.Municipality(ctx, pt)
				if err != nil || m == nil {
					return err
				}
				admin = &AdminUnit{County: m.County, Municipality: m.Municipality}
				return nil
			})
			return panicOnly(err)
		})
	}

	if src := a.sources.Elevation; src != nil {
		eg.Go(func() error {
			err := a.settings.track(SourceElevation, func() error {
				e, err := src.Elevation(ctx, pt)
				if err != nil {
					return err
				}
				elevation = elevationFrom(e)
				return nil
			})
			return panicOnly(err)
		})
	}

	if src := a.sources.Places; src != nil {
		eg.Go(func() error {
			err := a.settings.track(SourcePlaces, func() error {
				places, err := src.PlacesNear(ctx, pt)
				if err != nil {
					return err
				}
				candidates := make([]Candidate, 0, len(places))
				for _, p := range places {
					candidates = append(candidates, candidateFromPlace(p))
				}
				closest, err := Closest(coord, candidates)
				if err != nil {
					return err
				}
				candidate = &closest
				return nil
			})
			return panicOnly(err)
		})
	}

	if err := eg.Wait(); err != nil {
		return Feature{}, err
	}

	return Feature{
		Coordinate: coord,
		Elevation:  elevation.Meters,
		Properties: mergeProperties(admin, candidate, elevation),
	}, nil
}

// panicOnly keeps a panic as a group error and swallows ordinary lookup
// failures.
func panicOnly(err error) error {
	if err != nil && isPanic(err) {
		return err
	}
	return nil //nolint:nilerr // a failed lookup leaves its fields absent
}
