package geojson

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

const readBufSize = 1 << 16

// featureEnvelope mirrors the QuPath feature shape loosely. Every
// level is optional; anything missing or mistyped decodes to its zero
// value, which downstream filtering turns into a dropped record.
type featureEnvelope struct {
	Properties struct {
		ObjectType string `json:"objectType"`
	} `json:"properties"`
	Geometry struct {
		Coordinates []any `json:"coordinates"`
	} `json:"geometry"`
	NucleusGeometry struct {
		Coordinates []any `json:"coordinates"`
	} `json:"nucleusGeometry"`
}

// Stream reads cell geometries from a GeoJSON export one feature at a
// time, in the bufio.Scanner idiom:
//
//	s, err := geojson.Open(path)
//	if err != nil { ... }
//	defer s.Close()
//	for s.Next() {
//	    g := s.Geometry()
//	    ...
//	}
//	if err := s.Err(); err != nil { ... }
//
// A Stream is single-pass and not restartable; call Open again to
// re-read the file.
type Stream struct {
	f      *os.File
	dec    *json.Decoder
	cur    CellGeometry
	nextID int
	err    error
	inArr  bool
	done   bool
}

// Open prepares a streaming pass over the file at path.
func Open(path string) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Stream{
		f:      f,
		dec:    json.NewDecoder(bufio.NewReaderSize(f, readBufSize)),
		nextID: 1,
	}, nil
}

// Next advances to the next accepted cell record. It returns false
// when the features array is exhausted or the underlying read failed;
// Err distinguishes the two.
func (s *Stream) Next() bool {
	if s.err != nil || s.done {
		return false
	}
	if !s.inArr {
		ok, err := seekFeatures(s.dec)
		if err != nil {
			s.err = fmt.Errorf("scan for features array: %w", err)
			return false
		}
		if !ok {
			s.done = true
			return false
		}
		s.inArr = true
	}

	for s.dec.More() {
		var raw json.RawMessage
		if err := s.dec.Decode(&raw); err != nil {
			s.err = fmt.Errorf("read feature: %w", err)
			return false
		}

		var feat featureEnvelope
		// Shape irregularities degrade to zero values and drop the
		// record below; they never abort the stream.
		_ = json.Unmarshal(raw, &feat)

		if feat.Properties.ObjectType != "cell" {
			continue
		}
		cell := ParseRing(feat.Geometry.Coordinates)
		if len(cell) == 0 {
			continue
		}
		var nucleus []Point
		if len(feat.NucleusGeometry.Coordinates) > 0 {
			nucleus = ParseRing(feat.NucleusGeometry.Coordinates)
		}

		s.cur = CellGeometry{ID: s.nextID, Cell: cell, Nucleus: nucleus}
		s.nextID++
		return true
	}

	// More reports false on both the closing ']' and a read failure;
	// consuming the bracket surfaces the latter.
	if _, err := s.dec.Token(); err != nil {
		s.err = fmt.Errorf("read features array: %w", err)
		return false
	}
	s.done = true
	return false
}

// Geometry returns the record produced by the last successful Next.
func (s *Stream) Geometry() CellGeometry { return s.cur }

// Err returns the first error encountered during the pass, if any.
func (s *Stream) Err() error { return s.err }

// Close releases the underlying file.
func (s *Stream) Close() error { return s.f.Close() }

// Count reports how many features carry objectType "cell", without
// resolving geometry. It performs its own full read of the file.
//
// Count can exceed the number of records a Stream pass yields: a cell
// feature with empty or unresolvable geometry is counted here but
// dropped there. Callers sizing a progress indicator should treat the
// result as an upper bound.
func Count(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	dec := json.NewDecoder(bufio.NewReaderSize(f, readBufSize))
	ok, err := seekFeatures(dec)
	if err != nil {
		return 0, fmt.Errorf("scan for features array: %w", err)
	}
	if !ok {
		return 0, nil
	}

	n := 0
	for dec.More() {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return 0, fmt.Errorf("read feature: %w", err)
		}
		var feat struct {
			Properties struct {
				ObjectType string `json:"objectType"`
			} `json:"properties"`
		}
		_ = json.Unmarshal(raw, &feat)
		if feat.Properties.ObjectType == "cell" {
			n++
		}
	}
	if _, err := dec.Token(); err != nil {
		return 0, fmt.Errorf("read features array: %w", err)
	}
	return n, nil
}

// seekFeatures consumes tokens up to and including the opening '[' of
// the top-level "features" array. It returns false when the document
// is an object with no features key.
func seekFeatures(dec *json.Decoder) (bool, error) {
	tok, err := dec.Token()
	if err != nil {
		return false, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return false, fmt.Errorf("document is not a JSON object")
	}
	for {
		tok, err := dec.Token()
		if err != nil {
			return false, err
		}
		if d, ok := tok.(json.Delim); ok && d == '}' {
			return false, nil
		}
		key, _ := tok.(string)
		if key == "features" {
			tok, err := dec.Token()
			if err != nil {
				return false, err
			}
			if d, ok := tok.(json.Delim); !ok || d != '[' {
				return false, fmt.Errorf("features is not an array")
			}
			return true, nil
		}
		if err := skipValue(dec); err != nil {
			return false, err
		}
	}
}

// skipValue consumes one complete JSON value without materializing it.
func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	d, ok := tok.(json.Delim)
	if !ok || (d != '{' && d != '[') {
		return nil
	}
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}
