package render

import "image"

// Badge panel geometry.
const (
	iconPadding  = 6
	iconSpacing  = 6
	panelRadius  = 8
	markerRadius = 5
	markerGap    = 6
)

// PanelRect places the badge panel for n icons around a marker at
// (anchorX, anchorY). The panel is centered horizontally on the marker and
// anchors above it; when that leaves the canvas it flips below, and both
// axes clamp so the panel stays fully inside the canvas.
func PanelRect(anchorX, anchorY, n, canvasW, canvasH int) image.Rectangle {
	w := 2*iconPadding + n*IconSize + (n-1)*iconSpacing
	h := 2*iconPadding + IconSize

	x := anchorX - w/2
	y := anchorY - markerRadius - h - markerGap
	if y < 0 {
		y = anchorY + markerRadius + markerGap
	}

	x = clamp(x, 0, canvasW-w)
	y = clamp(y, 0, canvasH-h)
	return image.Rect(x, y, x+w, y+h)
}

// gridRowHeight is the vertical pitch of one overview row: icon, count line
// gap, then row spacing.
const gridRowHeight = IconSize + 6 + iconSpacing

// GridLayout lays n icon cells into rows of at most perRow, each row
// centered independently within totalWidth. It returns the top-left corner
// of every icon relative to the block origin, in item order.
func GridLayout(n, perRow, totalWidth int) []image.Point {
	if n <= 0 || perRow <= 0 {
		return nil
	}
	points := make([]image.Point, 0, n)
	for i := 0; i < n; i++ {
		row := i / perRow
		col := i % perRow
		inRow := perRow
		if left := n - row*perRow; left < perRow {
			inRow = left
		}
		rowW := inRow*IconSize + (inRow-1)*iconSpacing
		x0 := (totalWidth - rowW) / 2
		points = append(points, image.Point{
			X: x0 + col*(IconSize+iconSpacing),
			Y: row * gridRowHeight,
		})
	}
	return points
}

// GridRows returns how many rows GridLayout uses for n items.
func GridRows(n, perRow int) int {
	if n <= 0 || perRow <= 0 {
		return 0
	}
	return (n + perRow - 1) / perRow
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
