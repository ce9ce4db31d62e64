package render

import (
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"strings"
)

// fillCircle paints a filled disc centered at (cx, cy), alpha-composited
// over the destination.
func fillCircle(dst *image.RGBA, cx, cy, r int, c color.RGBA) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				blend(dst, cx+dx, cy+dy, c)
			}
		}
	}
}

// strokeCircle paints a ring of the given width just inside radius r.
func strokeCircle(dst *image.RGBA, cx, cy, r, width int, c color.RGBA) {
	inner := r - width
	if inner < 0 {
		inner = 0
	}
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			d := dx*dx + dy*dy
			if d <= r*r && d > inner*inner {
				blend(dst, cx+dx, cy+dy, c)
			}
		}
	}
}

// fillRoundedRect alpha-composites a rounded rectangle over dst using a mask,
// so translucent panel colors blend with the background underneath.
func fillRoundedRect(dst *image.RGBA, rect image.Rectangle, radius int, c color.RGBA) {
	mask := roundedMask(rect.Dx(), rect.Dy(), radius)
	draw.DrawMask(dst, rect, image.NewUniform(c), image.Point{}, mask, image.Point{}, draw.Over)
}

// roundedMask builds an alpha mask for a w×h rounded rectangle.
func roundedMask(w, h, radius int) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	if radius > w/2 {
		radius = w / 2
	}
	if radius > h/2 {
		radius = h / 2
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if insideRounded(x, y, w, h, radius) {
				mask.SetAlpha(x, y, color.Alpha{A: 0xFF})
			}
		}
	}
	return mask
}

func insideRounded(x, y, w, h, radius int) bool {
	// Corner centers; pixels outside all four corner discs but inside a
	// corner square are cut off.
	cx, cy := x, y
	switch {
	case x < radius && y < radius:
		cx, cy = radius, radius
	case x >= w-radius && y < radius:
		cx, cy = w-radius-1, radius
	case x < radius && y >= h-radius:
		cx, cy = radius, h-radius-1
	case x >= w-radius && y >= h-radius:
		cx, cy = w-radius-1, h-radius-1
	default:
		return true
	}
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy <= radius*radius
}

// blend composites src over one pixel, honoring src alpha.
func blend(dst *image.RGBA, x, y int, src color.RGBA) {
	if !(image.Point{X: x, Y: y}).In(dst.Bounds()) {
		return
	}
	if src.A == 0xFF {
		dst.SetRGBA(x, y, src)
		return
	}
	old := dst.RGBAAt(x, y)
	a := uint32(src.A)
	na := 255 - a
	dst.SetRGBA(x, y, color.RGBA{
		R: uint8((uint32(src.R)*a + uint32(old.R)*na) / 255),
		G: uint8((uint32(src.G)*a + uint32(old.G)*na) / 255),
		B: uint8((uint32(src.B)*a + uint32(old.B)*na) / 255),
		A: uint8(a + uint32(old.A)*na/255),
	})
}

// parseHexColor parses "#RRGGBB" (hash optional). Black on malformed input.
func parseHexColor(s string) color.RGBA {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.RGBA{A: 0xFF}
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{A: 0xFF}
	}
	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xFF,
	}
}

// hline draws a 1px horizontal line from x0 to x1 at y.
func hline(dst *image.RGBA, x0, x1, y int, c color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	for x := x0; x <= x1; x++ {
		blend(dst, x, y, c)
	}
}

// itoa keeps call sites short in drawing code.
func itoa(n int) string { return strconv.Itoa(n) }
