package geometry

import "math"

const epsilon = 1e-9

// Intersects reports whether a and b share any point, distributing over
// Multi* variants, Features, and collections, and treating boundary
// touches as intersection.
func Intersects(a, b *Object) bool {
	if !a.Bbox().Intersects(b.Bbox()) {
		return false
	}

	aPts, bPts := a.allPoints(), b.allPoints()
	aLines, bLines := a.allLines(), b.allLines()
	aPolys, bPolys := a.allPolygons(), b.allPolygons()

	for _, p := range aPts {
		if pointIntersectsAny(p, bPts, bLines, bPolys) {
			return true
		}
	}
	for _, p := range bPts {
		if pointIntersectsAny(p, aPts, aLines, aPolys) {
			return true
		}
	}
	for _, l1 := range aLines {
		for _, l2 := range bLines {
			if lineIntersectsLine(l1, l2) {
				return true
			}
		}
		for _, poly := range bPolys {
			if lineIntersectsPolygon(l1, poly) {
				return true
			}
		}
	}
	for _, l2 := range bLines {
		for _, poly := range aPolys {
			if lineIntersectsPolygon(l2, poly) {
				return true
			}
		}
	}
	for _, p1 := range aPolys {
		for _, p2 := range bPolys {
			if polygonIntersectsPolygon(p1, p2) {
				return true
			}
		}
	}
	return false
}

func pointIntersectsAny(p Point, pts []Point, lines []Ring, polys [][]Ring) bool {
	for _, q := range pts {
		if pointsEqual(p, q) {
			return true
		}
	}
	for _, line := range lines {
		if pointOnLine(p, line) {
			return true
		}
	}
	for _, poly := range polys {
		if pointInPolygon(p, poly) {
			return true
		}
	}
	return false
}

func pointsEqual(a, b Point) bool {
	return math.Abs(a.X-b.X) < epsilon && math.Abs(a.Y-b.Y) < epsilon
}

// pointInPolygon applies the even-odd ray-casting rule across the
// outer ring and holes of poly (poly[0] is the outer ring, poly[1:]
// are holes), counting a boundary touch as contained.
func pointInPolygon(p Point, poly []Ring) bool {
	inside := false
	for _, ring := range poly {
		if pointOnLine(p, ring) {
			return true
		}
		if rayCast(p, ring) {
			inside = !inside
		}
	}
	return inside
}

func rayCast(p Point, ring Ring) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		yi, yj := ring[i].Y, ring[j].Y
		xi, xj := ring[i].X, ring[j].X
		if (yi > p.Y) != (yj > p.Y) {
			xCross := xi + (p.Y-yi)/(yj-yi)*(xj-xi)
			if p.X < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

func pointOnLine(p Point, line Ring) bool {
	for i := 0; i+1 < len(line); i++ {
		if pointOnSegment(p, line[i], line[i+1]) {
			return true
		}
	}
	return false
}

func pointOnSegment(p, a, b Point) bool {
	cross := (p.X-a.X)*(b.Y-a.Y) - (p.Y-a.Y)*(b.X-a.X)
	if math.Abs(cross) > epsilon {
		return false
	}
	if math.Min(a.X, b.X)-epsilon > p.X || p.X > math.Max(a.X, b.X)+epsilon {
		return false
	}
	if math.Min(a.Y, b.Y)-epsilon > p.Y || p.Y > math.Max(a.Y, b.Y)+epsilon {
		return false
	}
	return true
}

func lineIntersectsLine(l1, l2 Ring) bool {
	for i := 0; i+1 < len(l1); i++ {
		for j := 0; j+1 < len(l2); j++ {
			if segmentsIntersect(l1[i], l1[i+1], l2[j], l2[j+1]) {
				return true
			}
		}
	}
	return false
}

func lineIntersectsPolygon(line Ring, poly []Ring) bool {
	for _, ring := range poly {
		if lineIntersectsLine(line, ring) {
			return true
		}
	}
	// No edge crossing: the line intersects the polygon iff any of its
	// vertices lies inside (the whole line is then interior, since it
	// crossed no boundary).
	if len(line) > 0 && pointInPolygon(line[0], poly) {
		return true
	}
	return false
}

func polygonIntersectsPolygon(p1, p2 []Ring) bool {
	for _, r1 := range p1 {
		for _, r2 := range p2 {
			if lineIntersectsLine(r1, r2) {
				return true
			}
		}
	}
	if len(p1) > 0 && len(p1[0]) > 0 && pointInPolygon(p1[0][0], p2) {
		return true
	}
	if len(p2) > 0 && len(p2[0]) > 0 && pointInPolygon(p2[0][0], p1) {
		return true
	}
	return false
}

// segmentsIntersect is the classic orientation + on-segment test,
// including the collinear-overlap case.
func segmentsIntersect(p1, p2, p3, p4 Point) bool {
	d1 := direction(p3, p4, p1)
	d2 := direction(p3, p4, p2)
	d3 := direction(p1, p2, p3)
	d4 := direction(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	if math.Abs(d1) < epsilon && onSegmentBox(p3, p4, p1) {
		return true
	}
	if math.Abs(d2) < epsilon && onSegmentBox(p3, p4, p2) {
		return true
	}
	if math.Abs(d3) < epsilon && onSegmentBox(p1, p2, p3) {
		return true
	}
	if math.Abs(d4) < epsilon && onSegmentBox(p1, p2, p4) {
		return true
	}
	return false
}

func direction(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func onSegmentBox(a, b, p Point) bool {
	return math.Min(a.X, b.X) <= p.X && p.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= p.Y && p.Y <= math.Max(a.Y, b.Y)
}
