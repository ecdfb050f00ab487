package geometry

import (
	"encoding/json"
	"math"
)

// ParseGeoJSON decodes raw GeoJSON text into an Object with its bbox
// precomputed. It accepts Point, MultiPoint, LineString, MultiLineString,
// Polygon, MultiPolygon, GeometryCollection, Feature, and FeatureCollection.
func ParseGeoJSON(raw []byte) (*Object, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, invalidf("malformed JSON: %v", err)
	}
	o, err := parseValue(doc)
	if err != nil {
		return nil, err
	}
	o.computeBBox()
	if !o.bbox.Valid() {
		return nil, invalidf("geometry has no finite coordinates")
	}
	return o, nil
}

func parseValue(doc map[string]any) (*Object, error) {
	typ, _ := doc["type"].(string)
	if typ == "" {
		return nil, invalidf("missing or non-string \"type\"")
	}

	switch typ {
	case "Point":
		p, err := parsePosition(doc["coordinates"])
		if err != nil {
			return nil, err
		}
		return &Object{Kind: KindPoint, Points: []Point{p}}, nil

	case "MultiPoint":
		coords, ok := asArray(doc["coordinates"])
		if !ok {
			return nil, invalidf("MultiPoint: coordinates must be an array")
		}
		pts := make([]Point, 0, len(coords))
		for _, c := range coords {
			p, err := parsePosition(c)
			if err != nil {
				return nil, err
			}
			pts = append(pts, p)
		}
		return &Object{Kind: KindMultiPoint, Points: pts}, nil

	case "LineString":
		ring, err := parseLine(doc["coordinates"])
		if err != nil {
			return nil, err
		}
		return &Object{Kind: KindLineString, Lines: []Ring{ring}}, nil

	case "MultiLineString":
		coords, ok := asArray(doc["coordinates"])
		if !ok {
			return nil, invalidf("MultiLineString: coordinates must be an array")
		}
		lines := make([]Ring, 0, len(coords))
		for _, c := range coords {
			line, err := parseLine(c)
			if err != nil {
				return nil, err
			}
			lines = append(lines, line)
		}
		return &Object{Kind: KindMultiLineString, Lines: lines}, nil

	case "Polygon":
		poly, err := parsePolygon(doc["coordinates"])
		if err != nil {
			return nil, err
		}
		return &Object{Kind: KindPolygon, Polygons: [][]Ring{poly}}, nil

	case "MultiPolygon":
		coords, ok := asArray(doc["coordinates"])
		if !ok {
			return nil, invalidf("MultiPolygon: coordinates must be an array")
		}
		polys := make([][]Ring, 0, len(coords))
		for _, c := range coords {
			poly, err := parsePolygon(c)
			if err != nil {
				return nil, err
			}
			polys = append(polys, poly)
		}
		return &Object{Kind: KindMultiPolygon, Polygons: polys}, nil

	case "GeometryCollection":
		geoms, ok := asArray(doc["geometries"])
		if !ok {
			return nil, invalidf("GeometryCollection: missing geometries array")
		}
		members := make([]*Object, 0, len(geoms))
		for _, g := range geoms {
			gm, ok := g.(map[string]any)
			if !ok {
				return nil, invalidf("GeometryCollection: member is not an object")
			}
			child, err := parseValue(gm)
			if err != nil {
				return nil, err
			}
			members = append(members, child)
		}
		return &Object{Kind: KindGeometryCollection, Members: members}, nil

	case "Feature":
		gm, ok := doc["geometry"].(map[string]any)
		if !ok {
			return nil, invalidf("Feature: missing geometry object")
		}
		child, err := parseValue(gm)
		if err != nil {
			return nil, err
		}
		return &Object{Kind: KindFeature, Geometry: child}, nil

	case "FeatureCollection":
		feats, ok := asArray(doc["features"])
		if !ok {
			return nil, invalidf("FeatureCollection: missing features array")
		}
		members := make([]*Object, 0, len(feats))
		for _, f := range feats {
			fm, ok := f.(map[string]any)
			if !ok {
				return nil, invalidf("FeatureCollection: member is not an object")
			}
			child, err := parseValue(fm)
			if err != nil {
				return nil, err
			}
			members = append(members, child)
		}
		return &Object{Kind: KindFeatureCollection, Members: members}, nil

	default:
		return nil, invalidf("unknown type %q", typ)
	}
}

func asArray(v any) ([]any, bool) {
	a, ok := v.([]any)
	return a, ok
}

func parsePosition(v any) (Point, error) {
	a, ok := asArray(v)
	if !ok || len(a) < 2 {
		return Point{}, invalidf("coordinate must be an array of at least two numbers")
	}
	x, ok1 := a[0].(float64)
	y, ok2 := a[1].(float64)
	if !ok1 || !ok2 {
		return Point{}, invalidf("coordinate values must be numbers")
	}
	if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
		return Point{}, invalidf("coordinate values must be finite")
	}
	return Point{X: x, Y: y}, nil
}

func parseLine(v any) (Ring, error) {
	a, ok := asArray(v)
	if !ok || len(a) < 2 {
		return nil, invalidf("line must have at least two positions")
	}
	ring := make(Ring, 0, len(a))
	for _, c := range a {
		p, err := parsePosition(c)
		if err != nil {
			return nil, err
		}
		ring = append(ring, p)
	}
	return ring, nil
}

func parsePolygon(v any) ([]Ring, error) {
	a, ok := asArray(v)
	if !ok || len(a) == 0 {
		return nil, invalidf("polygon must have at least one ring")
	}
	rings := make([]Ring, 0, len(a))
	for _, rv := range a {
		ring, err := parseLine(rv)
		if err != nil {
			return nil, err
		}
		if len(ring) < 4 {
			return nil, invalidf("polygon ring must have at least four positions")
		}
		first, last := ring[0], ring[len(ring)-1]
		if first.X != last.X || first.Y != last.Y {
			return nil, invalidf("polygon ring must be closed")
		}
		rings = append(rings, ring)
	}
	return rings, nil
}
