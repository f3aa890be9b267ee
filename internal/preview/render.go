package preview

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/blend"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/histotools/geojson2masks/internal/raster"
)

// goldenAngle in degrees; stepping hues by it keeps consecutive
// labels visually far apart.
const goldenAngle = 137.50776405003785

// cellValue dims the cell layer so the full-value nucleus layer reads
// on top after the lighten blend.
const (
	cellValue    = 0.62
	nucleusValue = 1.0
)

// labelColor returns a stable color for a label at the given HSV value.
func labelColor(id int32, value float64) color.NRGBA {
	hue := math.Mod(float64(id-1)*goldenAngle, 360)
	r, g, b := colorful.Hsv(hue, 0.65, value).RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// layer paints one mask onto a black canvas, one color per label.
func layer(m *raster.Mask, value float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
	colors := make(map[int32]color.NRGBA)
	for i, v := range m.Pix {
		if v == 0 {
			continue
		}
		c, ok := colors[v]
		if !ok {
			c = labelColor(v, value)
			colors[v] = c
		}
		o := 4 * i
		img.Pix[o] = c.R
		img.Pix[o+1] = c.G
		img.Pix[o+2] = c.B
		img.Pix[o+3] = 255
	}
	// Background stays opaque black.
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+3] = 255
	}
	return img
}

// Render composites the two masks into one visualization: cell regions
// in dimmed per-label colors with their nuclei overlaid at full value.
func Render(cell, nucleus *raster.Mask) *image.RGBA {
	return blend.Lighten(layer(cell, cellValue), layer(nucleus, nucleusValue))
}

// Save writes img to path, fitting it under maxDim on the longest side
// first. Labels are flat regions, so nearest-neighbor resampling keeps
// their edges crisp. The format follows the file extension.
func Save(path string, img image.Image, maxDim int) error {
	b := img.Bounds()
	if maxDim > 0 && (b.Dx() > maxDim || b.Dy() > maxDim) {
		img = imaging.Fit(img, maxDim, maxDim, imaging.NearestNeighbor)
	}
	return imaging.Save(img, path)
}
