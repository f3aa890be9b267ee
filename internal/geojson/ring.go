package geojson

// Point is a 2D coordinate in mask pixel space: x grows rightward,
// y grows downward, matching the raster convention of the output.
type Point struct {
	X float64
	Y float64
}

// CellGeometry holds the polygon data for a single detected cell.
//
// Cell is never empty for a record produced by Stream. Nucleus is nil
// when the source feature carries no usable nucleus geometry.
type CellGeometry struct {
	ID      int
	Cell    []Point
	Nucleus []Point
}

// ParseRing extracts the exterior ring from raw GeoJSON polygon
// coordinates, handling both encodings QuPath emits:
//
//   - Polygon:      [ring, ...holes]        -> ring
//   - MultiPolygon: [[ring, ...holes], ...] -> first polygon's ring
//
// The two shapes are told apart by nesting depth: for a Polygon,
// coords[0][0] is a coordinate pair, while for a MultiPolygon it is
// itself a ring. Holes and additional polygons are discarded. Points
// are kept in input order, including a repeated closing point.
//
// ParseRing returns nil for empty or missing coordinate data, and for
// anything that does not match the two shapes above — including a ring
// containing a malformed coordinate pair. It is a deliberately narrow
// contract, not a general GeoJSON geometry parser.
func ParseRing(coords []any) []Point {
	if len(coords) == 0 {
		return nil
	}
	first, ok := coords[0].([]any)
	if !ok || len(first) == 0 {
		return nil
	}

	ring := first
	inner, ok := first[0].([]any)
	if !ok {
		return nil
	}
	if len(inner) > 0 {
		if _, nested := inner[0].([]any); nested {
			// MultiPolygon: coords[0] is a polygon whose first
			// ring is the exterior boundary.
			ring = inner
		}
	}

	pts := make([]Point, 0, len(ring))
	for _, el := range ring {
		pt, ok := coordPair(el)
		if !ok {
			return nil
		}
		pts = append(pts, pt)
	}
	return pts
}

// coordPair reads a GeoJSON position. Extra dimensions beyond x and y
// are ignored.
func coordPair(el any) (Point, bool) {
	pair, ok := el.([]any)
	if !ok || len(pair) < 2 {
		return Point{}, false
	}
	x, xok := pair[0].(float64)
	y, yok := pair[1].(float64)
	if !xok || !yok {
		return Point{}, false
	}
	return Point{X: x, Y: y}, true
}
