package shroud

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/xfmoulet/qoi"
)

var (
	litColor  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	darkColor = color.RGBA{R: 0, G: 0, B: 0, A: 0}
)

type maskImage struct{ mask *Mask }

func (maskImage) ColorModel() color.Model { return color.RGBAModel }

func (m maskImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.mask.width, m.mask.height)
}

func (m maskImage) At(x, y int) color.Color {
	if m.mask.IsLit(x, y) {
		return litColor
	}
	return darkColor
}

// ExportQOI writes mask to w as a QOI image, using the lit sentinel
// color as the opaque pixel and dark as transparent — so a far
// visleaf's mask composites over a near one with a plain alpha blend.
func ExportQOI(w io.Writer, mask *Mask) error {
	if err := qoi.Encode(w, maskImage{mask}); err != nil {
		return fmt.Errorf("shroud: encoding qoi: %w", err)
	}
	return nil
}
