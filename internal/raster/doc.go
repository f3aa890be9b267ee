// Package raster converts cell polygons into integer label masks.
//
// A Mask is a height x width grid of int32 labels, row 0 at the top,
// 0 meaning background. Polygons are filled scanline by scanline:
// vertices are rounded to integer pixel coordinates, edges are
// intersected with row centers (y + 0.5), and the crossings are paired
// under the even-odd rule. Records are drawn in stream order and later
// fills overwrite earlier ones on shared pixels; there is no blending.
//
// The working element type is int32 so the grid can carry the full
// identifier range a signed fill primitive supports; narrowing to the
// final unsigned width happens downstream, after every record is drawn.
package raster
