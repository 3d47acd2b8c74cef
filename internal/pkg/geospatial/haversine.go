package geospatial

import "math"

const earthRadiusKm = 6371.0

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c * 1000 // meters
}

// BoxAreaKm2 returns the spherical surface area of a latitude/longitude box
// in square kilometres. Inverted boxes yield a negative area.
func BoxAreaKm2(south, north, west, east float64) float64 {
	band := math.Sin(toRad(north)) - math.Sin(toRad(south))
	return earthRadiusKm * earthRadiusKm * band * toRad(east-west)
}

// BoxDimensions returns the box's width along its southern edge and its
// height, both in meters.
func BoxDimensions(south, north, west, east float64) (widthMeters, heightMeters float64) {
	return Haversine(south, west, south, east), Haversine(south, west, north, west)
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
