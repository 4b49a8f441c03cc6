package spatial

import (
	"github.com/golang/geo/s2"

	"github.com/jengzang/expense-audit-go/internal/models"
)

// Constants
const (
	EarthRadiusKm = 6371.0 // Earth's mean radius in kilometers

	// DefaultTravelSpeedKmh is the assumed intercity travel speed when a
	// rule does not supply its own.
	DefaultTravelSpeedKmh = 120.0
)

// HaversineKm calculates the great-circle distance between two points in
// kilometers.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusKm
}

// IsSameCity reports whether two locations are in the same municipality.
// City strings are compared exactly; the canonical form keeps the
// municipality suffix, so no normalization happens here.
func IsSameCity(a, b models.Location) bool {
	return a.SameCity(b)
}

// Distance returns the great-circle distance in kilometers between two
// locations' resolvable coordinates. ok is false when either location has no
// known coordinates; callers must treat that as "cannot conclude", never as
// zero or infinity.
func (r *Resolver) Distance(a, b models.Location) (float64, bool) {
	ca, ok := r.Resolve(a)
	if !ok {
		return 0, false
	}
	cb, ok := r.Resolve(b)
	if !ok {
		return 0, false
	}
	return HaversineKm(ca.Lat, ca.Lng, cb.Lat, cb.Lng), true
}

// IsWithinDistance reports whether the two locations are at most maxKm
// apart. Unknown distance counts as not within.
func (r *Resolver) IsWithinDistance(a, b models.Location, maxKm float64) bool {
	km, ok := r.Distance(a, b)
	return ok && km <= maxKm
}

// TravelTime returns the hours needed to cover the distance between two
// locations at the given speed. Unknown distance propagates as ok=false.
func (r *Resolver) TravelTime(a, b models.Location, speedKmh float64) (float64, bool) {
	if speedKmh <= 0 {
		speedKmh = DefaultTravelSpeedKmh
	}
	km, ok := r.Distance(a, b)
	if !ok {
		return 0, false
	}
	return km / speedKmh, true
}
