// Package geo holds the spherical math shared by search, tests and the geocoder.
package geo

import (
	"math"

	"halal-directory/internal/domain"
)

const (
	// SearchRadiusMeters is the fixed proximity radius: 25 miles.
	SearchRadiusMeters = 40233.6

	// CoordinatePrecision is the number of decimals kept for stored coordinates (~0.11 m).
	CoordinatePrecision = 6

	earthRadiusMeters = 6371008.8
)

// Round rounds v to CoordinatePrecision decimal places
func Round(v float64) float64 {
	scale := math.Pow10(CoordinatePrecision)
	return math.Round(v*scale) / scale
}

// RoundCoordinates rounds both components
func RoundCoordinates(c domain.Coordinates) domain.Coordinates {
	return domain.Coordinates{Latitude: Round(c.Latitude), Longitude: Round(c.Longitude)}
}

// Valid reports whether c is inside the WGS84 domain
func Valid(c domain.Coordinates) bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// Distance returns the great-circle (haversine) distance in meters
func Distance(a, b domain.Coordinates) float64 {
	lat1, lat2 := radians(a.Latitude), radians(b.Latitude)
	dLat := lat2 - lat1
	dLon := radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Destination returns the point reached travelling distanceMeters from origin on bearingDegrees
func Destination(origin domain.Coordinates, bearingDegrees, distanceMeters float64) domain.Coordinates {
	delta := distanceMeters / earthRadiusMeters
	theta := radians(bearingDegrees)
	lat1 := radians(origin.Latitude)
	lon1 := radians(origin.Longitude)

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(delta) + math.Cos(lat1)*math.Sin(delta)*math.Cos(theta))
	lon2 := lon1 + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(lat1),
		math.Cos(delta)-math.Sin(lat1)*math.Sin(lat2),
	)

	lon := math.Mod(degrees(lon2)+540, 360) - 180
	return domain.Coordinates{Latitude: degrees(lat2), Longitude: lon}
}

// WithinRadius reports whether point lies within SearchRadiusMeters of center
func WithinRadius(center, point domain.Coordinates) bool {
	return Distance(center, point) <= SearchRadiusMeters
}

func radians(d float64) float64 { return d * math.Pi / 180 }
func degrees(r float64) float64 { return r * 180 / math.Pi }
