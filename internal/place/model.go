// Package place resolves coordinates to place metadata and place names to
// coordinates by merging the Geonorge elevation, place-name and municipality
// services into GeoJSON point features.
package place

import (
	"math"
	"strconv"
	"strings"

	"github.com/sells-group/placelookup/pkg/geonorge"
)

// Coordinate is a position in the reference system of the request.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

func (c Coordinate) point(epsg string) geonorge.Point {
	return geonorge.Point{North: c.Latitude, East: c.Longitude, EPSG: epsg}
}

// ApprovalStatus is the approval state of a name spelling.
type ApprovalStatus int

const (
	OtherApproval ApprovalStatus = iota
	ApprovedPrioritized
	Adopted
)

// NameStatus tells whether a spelling is the main name of a place.
type NameStatus int

const (
	AlternateName NameStatus = iota
	PrimaryName
)

// NameVariant is one recorded spelling of a place name.
type NameVariant struct {
	Text     string
	Language string
	Approval ApprovalStatus
	Status   NameStatus
}

// AdminUnit is the county and municipality a place belongs to.
type AdminUnit struct {
	County       string
	Municipality string
}

// Candidate is a place record returned by a lookup, not yet chosen as the answer.
type Candidate struct {
	Coordinate Coordinate
	AdminUnit  AdminUnit
	TypeCode   string
	ID         string
	Names      []NameVariant
}

// ElevationInfo is the outcome of an elevation lookup. Nil fields were not
// supplied by the service.
type ElevationInfo struct {
	Meters   *float64
	SiteID   *string
	SiteName *string
}

// Properties are the descriptive fields of a feature. Nil fields are absent.
type Properties struct {
	PlaceNumber  *string
	NameType     *string
	County       *string
	Municipality *string
	PlaceName    *string
}

// Feature is a resolved place.
type Feature struct {
	Coordinate Coordinate
	Elevation  *float64
	Properties Properties
}

// Coordinates returns the GeoJSON position: longitude, latitude and, only
// when it was resolved, elevation.
func (f Feature) Coordinates() []float64 {
	if f.Elevation == nil {
		return []float64{f.Coordinate.Longitude, f.Coordinate.Latitude}
	}
	return []float64{f.Coordinate.Longitude, f.Coordinate.Latitude, *f.Elevation}
}

// FeatureCollection is an ordered list of features.
type FeatureCollection struct {
	Features []Feature
}

// candidateFromPlace maps a raw place record. It cannot fail: whatever the
// record lacks stays empty.
func candidateFromPlace(p geonorge.Place) Candidate {
	c := Candidate{
		Coordinate: Coordinate{Latitude: p.North, Longitude: p.East},
		AdminUnit:  AdminUnit{County: p.County, Municipality: p.Municipality},
		TypeCode:   p.TypeCode,
		ID:         p.ID,
		Names:      make([]NameVariant, 0, len(p.Names)),
	}
	for _, n := range p.Names {
		c.Names = append(c.Names, NameVariant{
			Text:     n.Text,
			Language: n.Language,
			Approval: parseApproval(n.SpellingStatus),
			Status:   parseNameStatus(n.NameStatus),
		})
	}
	return c
}

func parseApproval(s string) ApprovalStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "godkjent og prioritert":
		return ApprovedPrioritized
	case "vedtatt":
		return Adopted
	default:
		return OtherApproval
	}
}

func parseNameStatus(s string) NameStatus {
	if strings.EqualFold(strings.TrimSpace(s), "hovednavn") {
		return PrimaryName
	}
	return AlternateName
}

// parseElevation reads an elevation literal. "None", an empty literal or
// anything that is not a finite number means the elevation is unknown.
func parseElevation(literal string) *float64 {
	literal = strings.TrimSpace(literal)
	if literal == "" || literal == "None" {
		return nil
	}
	v, err := strconv.ParseFloat(literal, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func elevationFrom(e *geonorge.Elevation) ElevationInfo {
	if e == nil {
		return ElevationInfo{}
	}
	return ElevationInfo{
		Meters:   parseElevation(e.Literal),
		SiteID:   optional(e.SiteID),
		SiteName: optional(e.SiteName),
	}
}

// optional returns nil for the empty string.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
