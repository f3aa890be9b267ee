package raster

import (
	"fmt"
	"math"
	"sort"

	"github.com/histotools/geojson2masks/internal/geojson"
)

// Source supplies cell records in identifier order. *geojson.Stream
// satisfies it.
type Source interface {
	Next() bool
	Geometry() geojson.CellGeometry
	Err() error
}

// ProgressFunc is invoked after each processed record with the number
// of records drawn so far and the caller-supplied total. It is a
// side-effecting hook only; it cannot influence rasterization.
type ProgressFunc func(current, total int)

// FillPolygon fills the interior of ring with id. Vertices are rounded
// half-to-even to pixel coordinates first; the ring is closed
// implicitly if the input does not repeat its first point.
//
// Spans are derived by intersecting edges with row centers (y + 0.5)
// and pairing the crossings even-odd. A pixel is painted when its
// center falls inside a span. Rings with fewer than three points, or
// whose rounded vertices enclose no pixel centers, paint nothing.
// Geometry outside the mask bounds is clipped, never an error.
func FillPolygon(m *Mask, ring []geojson.Point, id int32) {
	pts := roundRing(ring)
	if len(pts) < 3 {
		return
	}
	edges := buildEdges(pts)
	if len(edges) == 0 {
		return
	}

	yMin, yMax := edges[0].y0, edges[0].y1
	for _, e := range edges[1:] {
		yMin = math.Min(yMin, e.y0)
		yMax = math.Max(yMax, e.y1)
	}
	y0 := int(yMin)
	y1 := int(yMax)
	if y0 < 0 {
		y0 = 0
	}
	if y1 > m.Height {
		y1 = m.Height
	}

	xs := make([]float64, 0, 8)
	for y := y0; y < y1; y++ {
		scanY := float64(y) + 0.5
		xs = xs[:0]
		for _, e := range edges {
			if e.y0 <= scanY && scanY < e.y1 {
				xs = append(xs, e.xAt(scanY))
			}
		}
		if len(xs) < 2 {
			continue
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			// Pixel x is inside when its center x+0.5 lies in
			// [xs[i], xs[i+1]).
			x1 := int(math.Ceil(xs[i] - 0.5))
			x2 := int(math.Ceil(xs[i+1] - 0.5))
			m.setSpan(x1, x2, y, id)
		}
	}
}

// CreateLabelMasks drains src into two width x height label masks, one
// for cell boundaries and one for nuclei. Records are drawn in the
// order received, so later records overwrite earlier ones wherever
// they overlap. A record's nucleus, when present, is filled with the
// same identifier as its cell.
//
// progress, when non-nil, is called after each record with
// (processed, total) — but only when a positive total hint was given.
//
// The returned error is either a dimension precondition violation or
// the source's read error; masks are not returned in either case.
func CreateLabelMasks(src Source, width, height, total int, progress ProgressFunc) (cell, nucleus *Mask, err error) {
	if width <= 0 || height <= 0 {
		return nil, nil, fmt.Errorf("mask dimensions must be positive, got %dx%d", width, height)
	}

	cell = NewMask(width, height)
	nucleus = NewMask(width, height)

	processed := 0
	for src.Next() {
		g := src.Geometry()
		FillPolygon(cell, g.Cell, int32(g.ID))
		if len(g.Nucleus) > 0 {
			FillPolygon(nucleus, g.Nucleus, int32(g.ID))
		}
		processed++
		if progress != nil && total > 0 {
			progress(processed, total)
		}
	}
	if err := src.Err(); err != nil {
		return nil, nil, err
	}
	return cell, nucleus, nil
}
