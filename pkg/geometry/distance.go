package geometry

import "math"

// EarthRadiusMeters is the mean Earth radius used for haversine distance.
const EarthRadiusMeters = 6371008.8

// Haversine returns the great-circle distance in meters between two
// (lon, lat) points.
func Haversine(a, b Point) float64 {
	lat1 := a.Y * math.Pi / 180
	lat2 := b.Y * math.Pi / 180
	dLat := (b.Y - a.Y) * math.Pi / 180
	dLon := (b.X - a.X) * math.Pi / 180

	sinDLat := math.Sin(dLat / 2)
	sinDLon := math.Sin(dLon / 2)

	h := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLon*sinDLon
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusMeters * c
}

// BBoxDistance approximates the haversine distance from pt to the
// nearest point of b by clamping pt into b then taking haversine,
// the approximation spec.md §4.2 prescribes for k-NN pruning.
func BBoxDistance(pt Point, b BBox) float64 {
	cx, cy := b.ClampPoint(pt.X, pt.Y)
	return Haversine(pt, Point{X: cx, Y: cy})
}
