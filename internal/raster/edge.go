package raster

import (
	"math"

	"github.com/histotools/geojson2masks/internal/geojson"
)

// vertex is a polygon vertex after rounding to pixel coordinates.
type vertex struct {
	x, y int
}

// edge is a non-horizontal polygon edge stored with y0 < y1.
type edge struct {
	x0   float64
	y0   float64
	y1   float64
	dxdy float64 // change in x per unit y
}

func newEdge(p0, p1 vertex) edge {
	if p0.y > p1.y {
		p0, p1 = p1, p0
	}
	e := edge{
		x0: float64(p0.x),
		y0: float64(p0.y),
		y1: float64(p1.y),
	}
	e.dxdy = (float64(p1.x) - e.x0) / (e.y1 - e.y0)
	return e
}

// xAt returns the x coordinate where the edge crosses the given y.
func (e edge) xAt(y float64) float64 {
	return e.x0 + (y-e.y0)*e.dxdy
}

// roundRing converts a ring to integer pixel vertices, rounding each
// coordinate independently half-to-even.
func roundRing(ring []geojson.Point) []vertex {
	pts := make([]vertex, len(ring))
	for i, p := range ring {
		pts[i] = vertex{
			x: int(math.RoundToEven(p.X)),
			y: int(math.RoundToEven(p.Y)),
		}
	}
	return pts
}

// buildEdges builds the edge list for a ring, closing it implicitly.
// Horizontal edges never cross a row center and are skipped; a ring
// that repeats its first point contributes a zero-length closing edge,
// which the same check drops.
func buildEdges(pts []vertex) []edge {
	edges := make([]edge, 0, len(pts))
	for i := range pts {
		p0 := pts[i]
		p1 := pts[(i+1)%len(pts)]
		if p0.y == p1.y {
			continue
		}
		edges = append(edges, newEdge(p0, p1))
	}
	return edges
}
