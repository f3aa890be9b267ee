package geojson

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFixture(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.geojson")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func collect(t *testing.T, path string) []CellGeometry {
	t.Helper()
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	var out []CellGeometry
	for s.Next() {
		out = append(out, s.Geometry())
	}
	if err := s.Err(); err != nil {
		t.Fatalf("stream error: %v", err)
	}
	return out
}

const square = `[[[0, 0], [10, 0], [10, 10], [0, 10], [0, 0]]]`

func TestStream_YieldsOnlyCellsWithGaplessIDs(t *testing.T) {
	doc := `{
		"type": "FeatureCollection",
		"features": [
			{"properties": {"objectType": "annotation"}, "geometry": {"coordinates": ` + square + `}},
			{"properties": {"objectType": "cell"}, "geometry": {"coordinates": ` + square + `}},
			{"properties": {"objectType": "detection"}, "geometry": {"coordinates": ` + square + `}},
			{"properties": {"objectType": "cell"}, "geometry": {"coordinates": ` + square + `}},
			{"properties": {"objectType": "cell"}, "geometry": {"coordinates": ` + square + `}}
		]
	}`

	cells := collect(t, writeFixture(t, doc))
	if len(cells) != 3 {
		t.Fatalf("yielded %d records, want 3", len(cells))
	}
	for i, c := range cells {
		if c.ID != i+1 {
			t.Errorf("record %d has ID %d, want %d", i, c.ID, i+1)
		}
		if len(c.Cell) != 5 {
			t.Errorf("record %d cell ring has %d points, want 5", i, len(c.Cell))
		}
	}
}

func TestStream_DropsUnresolvableGeometry(t *testing.T) {
	// The middle cell has no geometry and must not consume an ID.
	doc := `{
		"features": [
			{"properties": {"objectType": "cell"}, "geometry": {"coordinates": ` + square + `}},
			{"properties": {"objectType": "cell"}},
			{"properties": {"objectType": "cell"}, "geometry": {"coordinates": []}},
			{"properties": {"objectType": "cell"}, "geometry": {"coordinates": ` + square + `}}
		]
	}`

	cells := collect(t, writeFixture(t, doc))
	if len(cells) != 2 {
		t.Fatalf("yielded %d records, want 2", len(cells))
	}
	if cells[0].ID != 1 || cells[1].ID != 2 {
		t.Errorf("IDs = %d, %d, want 1, 2", cells[0].ID, cells[1].ID)
	}
}

func TestStream_NucleusHandling(t *testing.T) {
	nucleus := `[[[2, 2], [4, 2], [4, 4], [2, 2]]]`
	doc := `{
		"features": [
			{"properties": {"objectType": "cell"},
			 "geometry": {"coordinates": ` + square + `},
			 "nucleusGeometry": {"coordinates": ` + nucleus + `}},
			{"properties": {"objectType": "cell"},
			 "geometry": {"coordinates": ` + square + `}},
			{"properties": {"objectType": "cell"},
			 "geometry": {"coordinates": ` + square + `},
			 "nucleusGeometry": {"coordinates": []}}
		]
	}`

	cells := collect(t, writeFixture(t, doc))
	if len(cells) != 3 {
		t.Fatalf("yielded %d records, want 3", len(cells))
	}
	if len(cells[0].Nucleus) != 4 {
		t.Errorf("record 0 nucleus has %d points, want 4", len(cells[0].Nucleus))
	}
	if cells[1].Nucleus != nil {
		t.Errorf("record 1 nucleus = %v, want nil (no nucleusGeometry)", cells[1].Nucleus)
	}
	if cells[2].Nucleus != nil {
		t.Errorf("record 2 nucleus = %v, want nil (empty coordinates)", cells[2].Nucleus)
	}
}

func TestStream_MultiPolygonFeature(t *testing.T) {
	doc := `{
		"features": [
			{"properties": {"objectType": "cell"},
			 "geometry": {"coordinates": [` + square + `]}}
		]
	}`

	cells := collect(t, writeFixture(t, doc))
	if len(cells) != 1 {
		t.Fatalf("yielded %d records, want 1", len(cells))
	}
	if len(cells[0].Cell) != 5 {
		t.Errorf("cell ring has %d points, want 5", len(cells[0].Cell))
	}
}

func TestStream_ToleratesMalformedFeatures(t *testing.T) {
	doc := `{
		"features": [
			5,
			{"properties": "not an object"},
			{"properties": {"objectType": "cell"}, "geometry": {"coordinates": 7}},
			{"properties": {"objectType": "cell"}, "geometry": {"coordinates": ` + square + `}}
		]
	}`

	cells := collect(t, writeFixture(t, doc))
	if len(cells) != 1 {
		t.Fatalf("yielded %d records, want 1", len(cells))
	}
	if cells[0].ID != 1 {
		t.Errorf("ID = %d, want 1", cells[0].ID)
	}
}

func TestStream_SkipsUnrelatedTopLevelKeys(t *testing.T) {
	doc := `{
		"type": "FeatureCollection",
		"metadata": {"nested": {"deep": [1, 2, {"x": []}]}},
		"tags": ["a", "b"],
		"features": [
			{"properties": {"objectType": "cell"}, "geometry": {"coordinates": ` + square + `}}
		]
	}`

	if cells := collect(t, writeFixture(t, doc)); len(cells) != 1 {
		t.Fatalf("yielded %d records, want 1", len(cells))
	}
}

func TestStream_NoFeaturesArray(t *testing.T) {
	if cells := collect(t, writeFixture(t, `{"type": "FeatureCollection"}`)); cells != nil {
		t.Errorf("yielded %d records, want none", len(cells))
	}
}

func TestStream_TruncatedFileReportsError(t *testing.T) {
	doc := `{"features": [{"properties": {"objectType": "cell"}, "geometry": {"coordinates": ` + square + `}}, {"properties"`

	s, err := Open(writeFixture(t, doc))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	var n int
	for s.Next() {
		n++
	}
	if n != 1 {
		t.Errorf("yielded %d records before failure, want 1", n)
	}
	if s.Err() == nil {
		t.Error("Err() = nil, want a read error for the truncated document")
	}
}

func TestOpen_MissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "absent.geojson")); err == nil {
		t.Error("Open succeeded for a missing file")
	}
}

func TestCount(t *testing.T) {
	doc := `{
		"features": [
			{"properties": {"objectType": "cell"}, "geometry": {"coordinates": ` + square + `}},
			{"properties": {"objectType": "annotation"}},
			{"properties": {"objectType": "cell"}, "geometry": {"coordinates": ` + square + `}}
		]
	}`

	n, err := Count(writeFixture(t, doc))
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}
}

// Count looks only at properties, so a cell with degenerate geometry
// is counted even though the stream drops it. The divergence is
// documented behavior: progress totals may overstate.
func TestCount_CanExceedStreamYield(t *testing.T) {
	doc := `{
		"features": [
			{"properties": {"objectType": "cell"}, "geometry": {"coordinates": ` + square + `}},
			{"properties": {"objectType": "cell"}, "geometry": {"coordinates": []}}
		]
	}`
	path := writeFixture(t, doc)

	n, err := Count(path)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	cells := collect(t, path)

	if n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}
	if len(cells) != 1 {
		t.Errorf("stream yielded %d records, want 1", len(cells))
	}
}
