// Package render turns an aggregated SiteInventory into the two raster
// outputs: the annotated 2x2 composite map and the resource overview.
// Missing assets degrade to fallback visuals; a render never fails because
// a texture or background could not be resolved.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"sort"

	"github.com/htrskmiku/solabot/internal/harvest"
	"github.com/htrskmiku/solabot/internal/refdata"
)

// Default canvas when no scene background resolves.
const (
	defaultCanvasW = 1920
	defaultCanvasH = 1080
)

// defaultGridWidth is the grid unit span assumed for scenes with no
// configured geometry.
const defaultGridWidth = 10

// Panel and marker palette.
var (
	superRarePanel = color.RGBA{R: 255, A: 128}
	rarePanel      = color.RGBA{B: 180, A: 128}
	commonPanel    = color.RGBA{R: 138, G: 138, B: 138, A: 179}
	rareOutline    = color.RGBA{R: 255, A: 255}
	blackOutline   = color.RGBA{A: 255}
	white          = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	black          = color.RGBA{A: 255}
)

// Renderer draws scenes, composites and overviews from one reference bundle.
type Renderer struct {
	Bundle *refdata.Bundle
	Icons  *IconSet
}

// NewRenderer creates a Renderer with its own icon cache.
func NewRenderer(bundle *refdata.Bundle) (*Renderer, error) {
	icons, err := NewIconSet(bundle)
	if err != nil {
		return nil, err
	}
	return &Renderer{Bundle: bundle, Icons: icons}, nil
}

// itemEntry is one displayable reward line: an item with its quantity and
// resolved texture reference.
type itemEntry struct {
	Type string
	ID   int
	Qty  int
}

// rewardEntries enumerates a reward deterministically (by type, then id),
// optionally keeping only rare/super-rare items.
func (r *Renderer) rewardEntries(reward harvest.Reward, onlyRare bool) []itemEntry {
	var entries []itemEntry
	for resourceType, byID := range reward {
		for id, qty := range byID {
			if onlyRare && !r.Bundle.IsRare(resourceType, id) {
				continue
			}
			entries = append(entries, itemEntry{Type: resourceType, ID: id, Qty: qty})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Type != entries[j].Type {
			return entries[i].Type < entries[j].Type
		}
		return entries[i].ID < entries[j].ID
	})
	return entries
}

// panelBlock is one badge panel computed in the layout pass.
type panelBlock struct {
	rect    image.Rectangle
	entries []itemEntry
	tier    refdata.Rarity
}

// Scene renders one site's entries onto its scene background.
func (r *Renderer) Scene(sceneKey string, entries []harvest.LocationEntry, onlyRare bool) *image.RGBA {
	canvas := r.sceneCanvas(sceneKey)
	cfg := r.Bundle.Scene(sceneKey)

	w := canvas.Bounds().Dx()
	h := canvas.Bounds().Dy()

	gridWidth := cfg.PhysicalWidth
	if gridWidth == 0 {
		gridWidth = defaultGridWidth
	}
	refWidth := cfg.ReferenceWidth
	if refWidth == 0 {
		refWidth = w
	}
	// Explicit canvas/reference ratio: 1:1 when the background matches the
	// width the grid was measured against.
	scale := gridWidth * float64(w) / float64(refWidth)

	originX := float64(w)/2 + cfg.OffsetX
	originY := float64(h)/2 + cfg.OffsetY

	var blocks []panelBlock
	labelFace, badgeFace := faces()

	for _, entry := range entries {
		gx := float64(entry.Location.X)
		gy := float64(entry.Location.Z)
		if cfg.ReverseXY {
			gx, gy = gy, gx
		}
		px := originX + axisSign(cfg.XDirection, refdata.XNegative)*gx*scale
		py := originY + axisSign(cfg.YDirection, refdata.YNegative)*gy*scale
		x, y := int(px), int(py)

		// Marker. The rare outline reflects the FULL reward set, before the
		// display filter narrows the badges.
		if hex, ok := r.Bundle.FixtureColor(entry.FixtureID); ok {
			fillCircle(canvas, x, y, markerRadius, parseHexColor(hex))
			outline := blackOutline
			if r.anyRare(entry.Reward) {
				outline = rareOutline
			}
			strokeCircle(canvas, x, y, markerRadius, 1, outline)
		} else {
			drawText(canvas, "?", x-6, y-10, labelFace, black)
		}

		display := r.rewardEntries(entry.Reward, onlyRare)
		if len(display) == 0 {
			continue
		}

		blocks = append(blocks, panelBlock{
			rect:    PanelRect(x, y, len(display), w, h),
			entries: display,
			tier:    r.highestTier(display),
		})
	}

	// Panels paint after every marker so badges stay on top.
	for _, blk := range blocks {
		fillRoundedRect(canvas, blk.rect, panelRadius, panelColor(blk.tier))

		cx := blk.rect.Min.X + iconPadding
		cy := blk.rect.Min.Y + iconPadding
		for _, e := range blk.entries {
			icon := r.Icons.Icon(e.Type, e.ID)
			draw.Draw(canvas, image.Rect(cx, cy, cx+IconSize, cy+IconSize), icon, icon.Bounds().Min, draw.Over)
			drawStrokedText(canvas, itoa(e.Qty), cx+2, cy+2, badgeFace, white, black)
			cx += IconSize + iconSpacing
		}
	}

	return canvas
}

// sceneCanvas loads the scene background, falling back to a blank white
// canvas of the default size.
func (r *Renderer) sceneCanvas(sceneKey string) *image.RGBA {
	if path := r.Bundle.BackgroundImage(sceneKey); path != "" {
		if img, err := loadImage(path); err == nil {
			return img
		} else {
			slog.Debug("scene background failed to load", "scene", sceneKey, "path", path, "err", err)
		}
	}
	canvas := image.NewRGBA(image.Rect(0, 0, defaultCanvasW, defaultCanvasH))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)
	return canvas
}

func (r *Renderer) anyRare(reward harvest.Reward) bool {
	for resourceType, byID := range reward {
		for id := range byID {
			if r.Bundle.IsRare(resourceType, id) {
				return true
			}
		}
	}
	return false
}

func (r *Renderer) highestTier(entries []itemEntry) refdata.Rarity {
	tier := refdata.Common
	for _, e := range entries {
		if t := r.Bundle.ItemRarity(e.Type, e.ID); t > tier {
			tier = t
		}
	}
	return tier
}

func panelColor(tier refdata.Rarity) color.RGBA {
	switch tier {
	case refdata.SuperRare:
		return superRarePanel
	case refdata.Rare:
		return rarePanel
	default:
		return commonPanel
	}
}

func axisSign(dir, negative string) float64 {
	if dir == negative {
		return -1
	}
	return 1
}
