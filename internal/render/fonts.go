package render

import (
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	fontOnce   sync.Once
	headerFace font.Face
	qtyFace    font.Face
)

// faces returns the 24px header face and the 16px quantity face. Both come
// from the embedded Go Regular font; a parse failure degrades to the basic
// bitmap face rather than failing a render.
func faces() (header, qty font.Face) {
	fontOnce.Do(func() {
		headerFace = basicfont.Face7x13
		qtyFace = basicfont.Face7x13

		ft, err := opentype.Parse(goregular.TTF)
		if err != nil {
			return
		}
		if f, err := opentype.NewFace(ft, &opentype.FaceOptions{Size: 24, DPI: 72, Hinting: font.HintingFull}); err == nil {
			headerFace = f
		}
		if f, err := opentype.NewFace(ft, &opentype.FaceOptions{Size: 16, DPI: 72, Hinting: font.HintingFull}); err == nil {
			qtyFace = f
		}
	})
	return headerFace, qtyFace
}

// drawText draws s with its top-left corner at (x, y).
func drawText(dst *image.RGBA, s string, x, y int, face font.Face, c color.Color) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)
}

// drawStrokedText draws s in fill over a 2px stroke outline, keeping
// quantities legible against arbitrary icon art.
func drawStrokedText(dst *image.RGBA, s string, x, y int, face font.Face, fill, stroke color.Color) {
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			drawText(dst, s, x+dx, y+dy, face, stroke)
		}
	}
	drawText(dst, s, x, y, face, fill)
}

// textSize measures the pixel box of s under face.
func textSize(s string, face font.Face) (w, h int) {
	m := face.Metrics()
	return font.MeasureString(face, s).Ceil(), (m.Ascent + m.Descent).Ceil()
}
