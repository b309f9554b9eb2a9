// Package shroud implements Component G: the per-visleaf shroud mask
// and the quadtree-subdivision rasterizer that fills it from a view
// cone.
package shroud

// Surface is the callable raster interface the rasterizer requires.
// Editor/render-loop-backed implementations are out of scope; the
// core only needs this much to fill a mask.
type Surface interface {
	Width() int
	Height() int
	FillWithDark()
	FillRect(x, y, w, h int)
	SetPixel(x, y int)
}

// Mask is a minimal in-memory bitmap implementation of Surface: every
// pixel is either dark (the default) or lit.
type Mask struct {
	width, height int
	lit           []bool
}

// NewMask allocates a width x height mask, initialized to dark
// everywhere.
func NewMask(width, height int) *Mask {
	return &Mask{width: width, height: height, lit: make([]bool, width*height)}
}

func (m *Mask) Width() int  { return m.width }
func (m *Mask) Height() int { return m.height }

func (m *Mask) FillWithDark() {
	for i := range m.lit {
		m.lit[i] = false
	}
}

func (m *Mask) FillRect(x, y, w, h int) {
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			m.SetPixel(x+dx, y+dy)
		}
	}
}

func (m *Mask) SetPixel(x, y int) {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return
	}
	m.lit[y*m.width+x] = true
}

// IsLit reports whether (x, y) was marked lit.
func (m *Mask) IsLit(x, y int) bool {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return false
	}
	return m.lit[y*m.width+x]
}

// IsEmpty reports whether no pixel in the mask is lit.
func (m *Mask) IsEmpty() bool {
	for _, v := range m.lit {
		if v {
			return false
		}
	}
	return true
}
