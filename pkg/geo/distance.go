package geo

import "math"

// EarthRadiusMiles is the mean Earth radius used for all distance calculations.
const EarthRadiusMiles = 3958.8

const kilometersPerMile = 1.609344

// Point is a coordinate pair in longitude, latitude order.
type Point struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// NewPoint returns nil when either component is missing.
func NewPoint(longitude, latitude *float64) *Point {
	if longitude == nil || latitude == nil {
		return nil
	}
	return &Point{Longitude: *longitude, Latitude: *latitude}
}

// DistanceMiles returns the haversine great-circle distance between a and b.
// It returns 0 when either point is absent.
func DistanceMiles(a, b *Point) float64 {
	if a == nil || b == nil {
		return 0
	}

	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Latitude))*math.Cos(toRadians(b.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMiles * c
}

// KilometersToMiles converts a search radius given in kilometers.
func KilometersToMiles(km float64) float64 {
	return km / kilometersPerMile
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
