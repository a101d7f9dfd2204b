package utils

import "math"

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two coordinates.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// BoundingBox returns a lat/lng box that contains every point within radiusKm of the centre.
func BoundingBox(lat, lng, radiusKm float64) (minLat, maxLat, minLng, maxLng float64) {
	dLat := radiusKm / earthRadiusKm * 180 / math.Pi
	minLat, maxLat = math.Max(lat-dLat, -90), math.Min(lat+dLat, 90)

	cos := math.Cos(toRad(lat))
	if cos < 1e-6 {
		return minLat, maxLat, -180, 180
	}
	dLng := dLat / cos
	return minLat, maxLat, math.Max(lng-dLng, -180), math.Min(lng+dLng, 180)
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
