// Package geo is the single home of the great-circle distance math used by
// scan validation. Every geofence check in the application goes through
// IsWithinRadius; the haversine formula is deliberately not reimplemented
// anywhere else.
package geo

import "math"

// EarthRadiusM is the mean Earth radius in meters used by the haversine
// formula.
const EarthRadiusM = 6371000.0

// DistanceMeters returns the great-circle distance in meters between two
// points given in degrees of latitude/longitude. The haversine formula is
// globally valid, so the antimeridian and poles need no special-casing.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusM * c
}

// IsWithinRadius reports whether point (lat, lon) lies within radiusM meters
// of the center. A non-positive radius only accepts the center itself.
func IsWithinRadius(centerLat, centerLon, radiusM, lat, lon float64) bool {
	return DistanceMeters(centerLat, centerLon, lat, lon) <= radiusM
}
