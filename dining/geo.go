package dining

import "math"

const earthRadiusKM = 6371.0

// HaversineKM returns the great-circle distance between two points in
// kilometers. It backs the client-side fallback when the gateway's geo-radius
// RPC is unavailable.
func HaversineKM(a, b GeoPoint) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusKM * math.Asin(math.Sqrt(h))
}

// WithinKM reports whether b lies within radius kilometers of a.
func WithinKM(a, b GeoPoint, radius float64) bool {
	return HaversineKM(a, b) <= radius
}
