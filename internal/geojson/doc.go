// Package geojson extracts cell and nucleus polygons from QuPath
// GeoJSON segmentation exports.
//
// QuPath exports a FeatureCollection where each detected cell is a
// feature with "objectType": "cell" in its properties, a "geometry"
// for the whole-cell boundary, and an optional "nucleusGeometry" for
// the nuclear boundary. Export files routinely describe hundreds of
// thousands of cells, so Stream reads the document incrementally with
// a token-level JSON decoder: auxiliary memory is bounded by the
// largest single feature, never by the file.
//
// # Identifier Assignment
//
// Cells are numbered 1, 2, 3, ... in file order. Only features that
// pass the objectType filter and resolve to a non-empty cell ring
// consume an identifier; 0 is reserved for background in the label
// masks built from these records.
//
// # Tolerance
//
// Structurally irregular features never abort the stream. A missing
// properties or geometry object behaves as an empty one, and a
// feature whose coordinates cannot be resolved to a ring is dropped
// without an error or an identifier. Only I/O failures and invalid
// JSON terminate the pass, reported through Stream.Err.
package geojson
