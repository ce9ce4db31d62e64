package render

import (
	"image"
	"image/color"
	"image/draw"
	"sort"

	"github.com/htrskmiku/solabot/internal/harvest"
	"github.com/htrskmiku/solabot/internal/refdata"
)

// Overview layout metrics.
const (
	overviewPadding = 24
	headerBand      = 36
	countGap        = 6
)

var (
	overviewIconBG = color.RGBA{R: 240, G: 240, B: 240, A: 220}
	rareRing       = color.RGBA{R: 220, G: 40, B: 40, A: 255}
	dividerColor   = color.RGBA{R: 230, G: 230, B: 230, A: 255}
)

// overviewItem is one item column of the overview with its global total.
type overviewItem struct {
	Type  string
	ID    int
	Total int
}

// Overview renders the per-scene and total resource counts as a vertical
// list of sections. Items are ordered by descending global total; an item
// with a zero global total is dropped everywhere, including scene sections
// where it would otherwise appear.
func (r *Renderer) Overview(inv harvest.SiteInventory, onlyRare bool, maxWidth int) *image.RGBA {
	items, perScene := r.tally(inv, onlyRare)

	if len(items) == 0 {
		return r.emptyOverview(maxWidth)
	}

	tileW, _ := r.tileSize()
	width := 2 * tileW
	if maxWidth > 0 && width > maxWidth {
		width = maxWidth
	}
	perRow := (width - 2*overviewPadding) / (IconSize + iconSpacing)
	if perRow < 1 {
		perRow = 1
	}

	type section struct {
		label string
		items []overviewItem
	}
	sections := make([]section, 0, len(refdata.SceneOrder)+1)
	for _, sceneKey := range refdata.SceneOrder {
		counts := perScene[sceneKey]
		local := make([]overviewItem, 0, len(items))
		for _, it := range items {
			if qty := counts[itemKey{it.Type, it.ID}]; qty > 0 {
				local = append(local, overviewItem{Type: it.Type, ID: it.ID, Total: qty})
			}
		}
		sections = append(sections, section{label: r.Bundle.LabelForScene(sceneKey), items: local})
	}
	sections = append(sections, section{label: "Total", items: items})

	height := overviewPadding
	for _, s := range sections {
		height += headerBand + GridRows(len(s.items), perRow)*gridRowHeight + overviewPadding
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)

	titleFace, countFace := faces()
	y := overviewPadding
	for i, s := range sections {
		drawText(canvas, s.label, overviewPadding, y, titleFace, black)
		y += headerBand

		points := GridLayout(len(s.items), perRow, width)
		for j, it := range s.items {
			x0 := points[j].X
			y0 := y + points[j].Y

			cell := image.Rect(x0, y0, x0+IconSize, y0+IconSize)
			fillRoundedRect(canvas, cell, panelRadius, overviewIconBG)

			icon := r.Icons.Icon(it.Type, it.ID)
			draw.Draw(canvas, cell, icon, icon.Bounds().Min, draw.Over)

			if r.Bundle.IsRare(it.Type, it.ID) {
				strokeCircle(canvas, x0+IconSize/2, y0+IconSize/2, IconSize/2+1, 2, rareRing)
			}

			qty := itoa(it.Total)
			qw, _ := textSize(qty, countFace)
			drawStrokedText(canvas, qty, x0+(IconSize-qw)/2, y0+IconSize+countGap-4, countFace, white, black)
		}
		y += GridRows(len(s.items), perRow)*gridRowHeight + overviewPadding

		if i < len(sections)-1 {
			hline(canvas, overviewPadding, width-overviewPadding, y-overviewPadding/2, dividerColor)
		}
	}

	return canvas
}

type itemKey struct {
	Type string
	ID   int
}

// tally aggregates global and per-scene quantities. Global items come back
// filtered to positive totals and sorted by descending total, ties broken
// by first appearance in scene order.
func (r *Renderer) tally(inv harvest.SiteInventory, onlyRare bool) ([]overviewItem, map[string]map[itemKey]int) {
	totals := make(map[itemKey]int)
	firstSeen := make(map[itemKey]int)
	perScene := make(map[string]map[itemKey]int, len(refdata.SceneOrder))

	for _, sceneKey := range refdata.SceneOrder {
		counts := make(map[itemKey]int)
		for _, entry := range r.sceneEntries(inv, sceneKey) {
			for _, e := range r.rewardEntries(entry.Reward, onlyRare) {
				k := itemKey{e.Type, e.ID}
				if _, ok := firstSeen[k]; !ok {
					firstSeen[k] = len(firstSeen)
				}
				counts[k] += e.Qty
				totals[k] += e.Qty
			}
		}
		perScene[sceneKey] = counts
	}

	items := make([]overviewItem, 0, len(totals))
	for k, total := range totals {
		if total > 0 {
			items = append(items, overviewItem{Type: k.Type, ID: k.ID, Total: total})
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Total != items[j].Total {
			return items[i].Total > items[j].Total
		}
		return firstSeen[itemKey{items[i].Type, items[i].ID}] < firstSeen[itemKey{items[j].Type, items[j].ID}]
	})
	return items, perScene
}

// emptyOverview is the placeholder canvas when nothing passed the filter.
func (r *Renderer) emptyOverview(maxWidth int) *image.RGBA {
	width := maxWidth
	if width > 800 {
		width = 800
	}
	if width < 400 {
		width = 400
	}
	canvas := image.NewRGBA(image.Rect(0, 0, width, 200))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)

	titleFace, _ := faces()
	msg := "No resources found"
	tw, th := textSize(msg, titleFace)
	drawText(canvas, msg, (width-tw)/2, (200-th)/2, titleFace, black)
	return canvas
}
