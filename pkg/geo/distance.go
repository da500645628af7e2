// Package geo holds the little geodesic math the aggregator needs.
package geo

import "math"

const earthRadiusMiles = 3958.8

// Point is a WGS84 coordinate pair.
type Point struct {
	Latitude  float64
	Longitude float64
}

// Miles returns the haversine great-circle distance between two points,
// rounded to one decimal place (half away from zero).
func Miles(from, to Point) float64 {
	lat1 := radians(from.Latitude)
	lat2 := radians(to.Latitude)
	dLat := radians(to.Latitude - from.Latitude)
	dLng := radians(to.Longitude - from.Longitude)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return math.Round(earthRadiusMiles*c*10) / 10
}

func radians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
