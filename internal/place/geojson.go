package place

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// Point returns the feature geometry, three-dimensional only when the
// elevation is known.
func (f Feature) Point() *geom.Point {
	if f.Elevation == nil {
		return geom.NewPointFlat(geom.XY, f.Coordinates())
	}
	return geom.NewPointFlat(geom.XYZ, f.Coordinates())
}

// Map returns the present properties keyed by their GeoJSON names.
func (p Properties) Map() map[string]any {
	m := make(map[string]any, 5)
	for key, v := range map[string]*string{
		"placeNumber":  p.PlaceNumber,
		"nameType":     p.NameType,
		"county":       p.County,
		"municipality": p.Municipality,
		"placeName":    p.PlaceName,
	} {
		if v != nil {
			m[key] = *v
		}
	}
	return m
}

// GeoJSON converts f to a go-geom GeoJSON feature.
func (f Feature) GeoJSON() *geojson.Feature {
	return &geojson.Feature{
		Geometry:   f.Point(),
		Properties: f.Properties.Map(),
	}
}

// MarshalJSON encodes f as a GeoJSON Feature.
func (f Feature) MarshalJSON() ([]byte, error) {
	return f.GeoJSON().MarshalJSON()
}

// GeoJSON converts fc to a go-geom GeoJSON feature collection.
func (fc FeatureCollection) GeoJSON() *geojson.FeatureCollection {
	out := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(fc.Features))}
	for _, f := range fc.Features {
		out.Features = append(out.Features, f.GeoJSON())
	}
	return out
}

// MarshalJSON encodes fc as a GeoJSON FeatureCollection.
func (fc FeatureCollection) MarshalJSON() ([]byte, error) {
	return fc.GeoJSON().MarshalJSON()
}
