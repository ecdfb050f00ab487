package geometry

// Point is a single (lon, lat) position, treated as planar (x, y).
type Point struct {
	X, Y float64
}

// Ring is an ordered sequence of positions; for polygons it must be
// closed (first == last) and hold at least four positions.
type Ring []Point

// Kind tags which GeoJSON geometry variant an Object holds.
type Kind int

const (
	KindPoint Kind = iota
	KindMultiPoint
	KindLineString
	KindMultiLineString
	KindPolygon
	KindMultiPolygon
	KindGeometryCollection
	KindFeature
	KindFeatureCollection
)

// Object is a parsed GeoJSON value. Only the fields relevant to its Kind
// are populated. Feature unwraps transparently to its Geometry; a
// FeatureCollection or GeometryCollection holds its children in Members.
type Object struct {
	Kind Kind

	Points   []Point  // KindPoint (len 1), KindMultiPoint (len N)
	Lines    []Ring   // KindLineString (len 1), KindMultiLineString (len N)
	Polygons [][]Ring // KindPolygon (len 1), KindMultiPolygon (len N); each polygon is outer ring + holes

	Geometry *Object   // KindFeature
	Members  []*Object // KindGeometryCollection, KindFeatureCollection

	bbox BBox
}

// Bbox returns the object's precomputed bounding box.
func (o *Object) Bbox() BBox { return o.bbox }

// computeBBox walks the object's coordinates (or children) and sets o.bbox.
func (o *Object) computeBBox() {
	b := EmptyBBox()
	switch o.Kind {
	case KindPoint, KindMultiPoint:
		for _, p := range o.Points {
			b = b.Union(BBox{p.X, p.Y, p.X, p.Y})
		}
	case KindLineString, KindMultiLineString:
		for _, line := range o.Lines {
			for _, p := range line {
				b = b.Union(BBox{p.X, p.Y, p.X, p.Y})
			}
		}
	case KindPolygon, KindMultiPolygon:
		for _, poly := range o.Polygons {
			for _, ring := range poly {
				for _, p := range ring {
					b = b.Union(BBox{p.X, p.Y, p.X, p.Y})
				}
			}
		}
	case KindFeature:
		if o.Geometry != nil {
			o.Geometry.computeBBox()
			b = o.Geometry.Bbox()
		}
	case KindGeometryCollection, KindFeatureCollection:
		for _, m := range o.Members {
			m.computeBBox()
			b = b.Union(m.Bbox())
		}
	}
	o.bbox = b
}

// allPolygons returns every polygon of this object (each one its outer
// ring followed by its holes), recursing through Feature/Collection
// wrappers.
func (o *Object) allPolygons() [][]Ring {
	switch o.Kind {
	case KindPolygon, KindMultiPolygon:
		return o.Polygons
	case KindFeature:
		if o.Geometry != nil {
			return o.Geometry.allPolygons()
		}
	case KindGeometryCollection, KindFeatureCollection:
		var out [][]Ring
		for _, m := range o.Members {
			out = append(out, m.allPolygons()...)
		}
		return out
	}
	return nil
}

func (o *Object) allLines() []Ring {
	switch o.Kind {
	case KindLineString, KindMultiLineString:
		return o.Lines
	case KindFeature:
		if o.Geometry != nil {
			return o.Geometry.allLines()
		}
	case KindGeometryCollection, KindFeatureCollection:
		var out []Ring
		for _, m := range o.Members {
			out = append(out, m.allLines()...)
		}
		return out
	}
	return nil
}

func (o *Object) allPoints() []Point {
	switch o.Kind {
	case KindPoint, KindMultiPoint:
		return o.Points
	case KindFeature:
		if o.Geometry != nil {
			return o.Geometry.allPoints()
		}
	case KindGeometryCollection, KindFeatureCollection:
		var out []Point
		for _, m := range o.Members {
			out = append(out, m.allPoints()...)
		}
		return out
	}
	return nil
}
