package transport

import (
	"math"
	"net/url"
	"strconv"

	"halal-directory/internal/domain"
	"halal-directory/internal/geo"
	"halal-directory/internal/middleware"
)

// queryCoordinates reads lat/lon query parameters. It returns nil when neither
// is set and a validation error when only one is set or either is out of range.
func queryCoordinates(q url.Values) (*domain.Coordinates, []middleware.ValidationError) {
	rawLat, rawLon := q.Get("lat"), q.Get("lon")
	if rawLat == "" && rawLon == "" {
		return nil, nil
	}

	var errs []middleware.ValidationError
	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil || math.IsNaN(lat) || lat < -90 || lat > 90 {
		errs = append(errs, middleware.ValidationError{Field: "lat", Message: "Must be a latitude between -90 and 90"})
	}
	lon, err := strconv.ParseFloat(rawLon, 64)
	if err != nil || math.IsNaN(lon) || lon < -180 || lon > 180 {
		errs = append(errs, middleware.ValidationError{Field: "lon", Message: "Must be a longitude between -180 and 180"})
	}
	if len(errs) > 0 {
		return nil, errs
	}

	coords := geo.RoundCoordinates(domain.Coordinates{Latitude: lat, Longitude: lon})
	return &coords, nil
}
