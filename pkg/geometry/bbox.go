// Package geometry implements GeoJSON parsing, bounding-box extraction,
// geometry-geometry intersection, and haversine distance for spatio.
package geometry

import "math"

// BBox is an axis-aligned bounding box in (x=lon, y=lat) space.
type BBox struct {
	MinX, MinY, MaxX, MaxY float64
}

// EmptyBBox returns a bbox suitable as the zero value for a running union:
// any real bbox unioned with it yields itself.
func EmptyBBox() BBox {
	return BBox{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
}

// Valid reports whether the bbox is finite and non-inverted.
func (b BBox) Valid() bool {
	return !math.IsInf(b.MinX, 0) && !math.IsInf(b.MaxX, 0) &&
		!math.IsInf(b.MinY, 0) && !math.IsInf(b.MaxY, 0) &&
		b.MinX <= b.MaxX && b.MinY <= b.MaxY
}

// Area returns the rectangle's area.
func (b BBox) Area() float64 {
	return (b.MaxX - b.MinX) * (b.MaxY - b.MinY)
}

// Margin returns the half-perimeter. The quadratic split compares seed
// pairs by area, not by margin.
func (b BBox) Margin() float64 {
	return (b.MaxX - b.MinX) + (b.MaxY - b.MinY)
}

// Union returns the smallest bbox enclosing both b and o.
func (b BBox) Union(o BBox) BBox {
	return BBox{
		MinX: math.Min(b.MinX, o.MinX),
		MinY: math.Min(b.MinY, o.MinY),
		MaxX: math.Max(b.MaxX, o.MaxX),
		MaxY: math.Max(b.MaxY, o.MaxY),
	}
}

// Enlargement returns the area added to b's own area by unioning with o.
func (b BBox) Enlargement(o BBox) float64 {
	return b.Union(o).Area() - b.Area()
}

// ContainsPoint reports whether (x, y) lies within b, inclusive of the boundary.
func (b BBox) ContainsPoint(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// ContainsBBox reports whether b fully encloses o.
func (b BBox) ContainsBBox(o BBox) bool {
	return o.MinX >= b.MinX && o.MaxX <= b.MaxX && o.MinY >= b.MinY && o.MaxY <= b.MaxY
}

// Intersects reports whether b and o share at least a boundary point.
func (b BBox) Intersects(o BBox) bool {
	return b.MinX <= o.MaxX && b.MaxX >= o.MinX && b.MinY <= o.MaxY && b.MaxY >= o.MinY
}

// ClampPoint returns the closest point to (x, y) that lies within b,
// used by the R-tree's k-NN pruning to derive a nearest-point distance
// from a query location to a candidate bbox.
func (b BBox) ClampPoint(x, y float64) (float64, float64) {
	cx := math.Max(b.MinX, math.Min(x, b.MaxX))
	cy := math.Max(b.MinY, math.Min(y, b.MaxY))
	return cx, cy
}
