package raster

// Mask is a label grid: Pix[y*Width+x] holds the identifier of the
// cell covering pixel (x, y), or 0 for background.
type Mask struct {
	Width  int
	Height int
	Pix    []int32
}

// NewMask allocates a zeroed width x height mask.
func NewMask(width, height int) *Mask {
	return &Mask{
		Width:  width,
		Height: height,
		Pix:    make([]int32, width*height),
	}
}

// At returns the label at (x, y). Coordinates must be in bounds.
func (m *Mask) At(x, y int) int32 {
	return m.Pix[y*m.Width+x]
}

// Max returns the largest label present in the mask, 0 when empty.
func (m *Mask) Max() int32 {
	var max int32
	for _, v := range m.Pix {
		if v > max {
			max = v
		}
	}
	return max
}

// setSpan paints [x1, x2) on row y, clipped to the mask bounds.
// Out-of-range rows and columns are silently ignored.
func (m *Mask) setSpan(x1, x2, y int, v int32) {
	if y < 0 || y >= m.Height {
		return
	}
	if x1 < 0 {
		x1 = 0
	}
	if x2 > m.Width {
		x2 = m.Width
	}
	row := m.Pix[y*m.Width : (y+1)*m.Width]
	for x := x1; x < x2; x++ {
		row[x] = v
	}
}
