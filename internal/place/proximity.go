package place

import (
	"sort"

	"github.com/rotisserie/eris"
)

// ErrNoCandidates is returned by Closest for an empty candidate list.
var ErrNoCandidates = eris.New("place: no candidates")

// Closest returns the candidate nearest to target, measured as the squared
// planar distance in raw degrees. Ties keep the service's order.
func Closest(target Coordinate, candidates []Candidate) (Candidate, error) {
	if len(candidates) == 0 {
		return Candidate{}, ErrNoCandidates
	}

	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return squaredDistance(target, ranked[i].Coordinate) < squaredDistance(target, ranked[j].Coordinate)
	})
	return ranked[0], nil
}

func squaredDistance(a, b Coordinate) float64 {
	dLat := a.Latitude - b.Latitude
	dLon := a.Longitude - b.Longitude
	return dLat*dLat + dLon*dLon
}
