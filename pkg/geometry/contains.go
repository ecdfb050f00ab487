package geometry

// Within reports whether sub is fully contained in region. region must
// resolve to one or more polygons (a bbox-shaped Polygon counts); every
// vertex of sub must lie inside region and no edge of sub may cross
// region's boundary, which together guarantee full containment for the
// simple polygons this service accepts.
func Within(region, sub *Object) bool {
	if !region.Bbox().ContainsBBox(sub.Bbox()) {
		return false
	}
	regionPolys := region.allPolygons()
	if len(regionPolys) == 0 {
		return false
	}

	for _, p := range sub.allPoints() {
		if !pointInAnyPolygon(p, regionPolys) {
			return false
		}
	}
	for _, line := range sub.allLines() {
		for _, p := range line {
			if !pointInAnyPolygon(p, regionPolys) {
				return false
			}
		}
		if crossesBoundary(line, regionPolys) {
			return false
		}
	}
	for _, poly := range sub.allPolygons() {
		for _, ring := range poly {
			for _, p := range ring {
				if !pointInAnyPolygon(p, regionPolys) {
					return false
				}
			}
			if crossesBoundary(ring, regionPolys) {
				return false
			}
		}
	}
	return true
}

func pointInAnyPolygon(p Point, polys [][]Ring) bool {
	for _, poly := range polys {
		if pointInPolygon(p, poly) {
			return true
		}
	}
	return false
}

func crossesBoundary(line Ring, polys [][]Ring) bool {
	for _, poly := range polys {
		for _, ring := range poly {
			if lineIntersectsLine(line, ring) {
				// A shared boundary point is fine; an actual crossing
				// (transversal) is not. lineIntersectsLine already
				// includes pure touches, so re-check with a stricter
				// transversal test to avoid rejecting boundary-touching
				// but still-contained geometry.
				if lineCrossesRingTransversally(line, ring) {
					return true
				}
			}
		}
	}
	return false
}

// lineCrossesRingTransversally reports a true crossing (not a mere
// touch) of line through ring, by checking each segment pair for a
// strict interior intersection.
func lineCrossesRingTransversally(line, ring Ring) bool {
	for i := 0; i+1 < len(line); i++ {
		for j := 0; j+1 < len(ring); j++ {
			if strictSegmentCross(line[i], line[i+1], ring[j], ring[j+1]) {
				return true
			}
		}
	}
	return false
}

func strictSegmentCross(p1, p2, p3, p4 Point) bool {
	d1 := direction(p3, p4, p1)
	d2 := direction(p3, p4, p2)
	d3 := direction(p1, p2, p3)
	d4 := direction(p1, p2, p4)
	return ((d1 > epsilon && d2 < -epsilon) || (d1 < -epsilon && d2 > epsilon)) &&
		((d3 > epsilon && d4 < -epsilon) || (d3 < -epsilon && d4 > epsilon))
}
