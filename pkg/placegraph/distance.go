package placegraph

import (
	"math"

	"github.com/golang/geo/s2"

	"caravan-bot/internal/entity"
)

// Earth's mean radius in kilometers.
const earthRadiusKm = 6371.0

// distanceKm returns the great-circle distance between two waypoints. A
// waypoint whose location cannot be parsed is unroutable, so the distance
// degrades to infinity rather than an error.
func distanceKm(a, b entity.Waypoint) float64 {
	from, err := a.LatLng()
	if err != nil {
		return math.Inf(1)
	}
	to, err := b.LatLng()
	if err != nil {
		return math.Inf(1)
	}

	p1 := s2.LatLngFromDegrees(from.Lat, from.Lng)
	p2 := s2.LatLngFromDegrees(to.Lat, to.Lng)
	return p1.Distance(p2).Radians() * earthRadiusKm
}
