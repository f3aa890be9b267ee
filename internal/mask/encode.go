package mask

import (
	"encoding/binary"
	"image"
	"image/color"
	"math"

	"github.com/histotools/geojson2masks/internal/raster"
)

// BitDepth returns the smallest unsigned pixel width in bits (8, 16,
// or 32) that can represent maxID.
func BitDepth(maxID int32) int {
	switch {
	case maxID <= math.MaxUint8:
		return 8
	case maxID <= math.MaxUint16:
		return 16
	default:
		return 32
	}
}

// Convert re-encodes a label mask at the width selected for maxID,
// preserving every value exactly. Both masks of a conversion must be
// passed the same overall maxID so that a nucleus label is always
// representable in the same width as its parent cell label.
//
// The 8- and 16-bit cases return standard grayscale images; the 32-bit
// case returns a *Gray32 that aliases the mask's pixel slice without
// copying, since the working grid is already 32 bits wide.
func Convert(m *raster.Mask, maxID int32) image.Image {
	rect := image.Rect(0, 0, m.Width, m.Height)
	switch BitDepth(maxID) {
	case 8:
		img := image.NewGray(rect)
		for i, v := range m.Pix {
			img.Pix[i] = uint8(v)
		}
		return img
	case 16:
		img := image.NewGray16(rect)
		for i, v := range m.Pix {
			binary.BigEndian.PutUint16(img.Pix[2*i:], uint16(v))
		}
		return img
	default:
		return &Gray32{Pix: m.Pix, Stride: m.Width, Rect: rect}
	}
}

// Gray32 is a single-channel image holding 32-bit labels. It exists so
// masks with more than 65535 cells can flow through image-typed APIs;
// exact values are read with Label, while At serves generic consumers
// by clamping to the Gray16 range.
type Gray32 struct {
	Pix    []int32 // row-major labels, always non-negative
	Stride int     // pixels per row
	Rect   image.Rectangle
}

func (g *Gray32) ColorModel() color.Model { return color.Gray16Model }

func (g *Gray32) Bounds() image.Rectangle { return g.Rect }

func (g *Gray32) At(x, y int) color.Color {
	v := g.Label(x, y)
	if v > math.MaxUint16 {
		v = math.MaxUint16
	}
	return color.Gray16{Y: uint16(v)}
}

// Label returns the exact label at (x, y), or 0 outside the bounds.
func (g *Gray32) Label(x, y int) int32 {
	if !(image.Point{X: x, Y: y}.In(g.Rect)) {
		return 0
	}
	return g.Pix[(y-g.Rect.Min.Y)*g.Stride+(x-g.Rect.Min.X)]
}
