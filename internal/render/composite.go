package render

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/htrskmiku/solabot/internal/harvest"
	"github.com/htrskmiku/solabot/internal/refdata"
)

// Composite renders all four harvest scenes into a 2x2 grid, row-major in
// scene order. Scenes absent from the inventory render as empty tiles so
// the layout stays stable.
func (r *Renderer) Composite(inv harvest.SiteInventory, onlyRare bool) *image.RGBA {
	tileW, tileH := r.tileSize()

	canvas := image.NewRGBA(image.Rect(0, 0, tileW*2, tileH*2))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)

	for i, sceneKey := range refdata.SceneOrder {
		tile := r.Scene(sceneKey, r.sceneEntries(inv, sceneKey), onlyRare)

		x := (i % 2) * tileW
		y := (i / 2) * tileH
		dst := image.Rect(x, y, x+tileW, y+tileH)
		if tile.Bounds().Dx() == tileW && tile.Bounds().Dy() == tileH {
			draw.Draw(canvas, dst, tile, tile.Bounds().Min, draw.Src)
		} else {
			xdraw.CatmullRom.Scale(canvas, dst, tile, tile.Bounds(), xdraw.Src, nil)
		}
	}
	return canvas
}

// sceneEntries resolves a scene's entries by its site label first, then by
// the scene key itself for inventories produced with an unlabeled bundle.
func (r *Renderer) sceneEntries(inv harvest.SiteInventory, sceneKey string) []harvest.LocationEntry {
	if entries, ok := inv[r.Bundle.LabelForScene(sceneKey)]; ok {
		return entries
	}
	return inv[sceneKey]
}

// tileSize picks the composite tile dimensions from the first scene whose
// background image resolves, keeping all four tiles uniform.
func (r *Renderer) tileSize() (w, h int) {
	for _, sceneKey := range refdata.SceneOrder {
		path := r.Bundle.BackgroundImage(sceneKey)
		if path == "" {
			continue
		}
		if img, err := loadImage(path); err == nil {
			return img.Bounds().Dx(), img.Bounds().Dy()
		}
	}
	return defaultCanvasW, defaultCanvasH
}
