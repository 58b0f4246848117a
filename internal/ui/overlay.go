package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const (
	maxPanelWidth  = 72
	maxListHeight  = 10
	minListHeight  = 3
	panelChrome    = 2 // border columns/rows on each axis
	panelPaddingX  = 1
	panelHeaderRow = 2 // input line and divider
)

// panelLayout is the screen geometry of the open palette, shared by the
// renderer and mouse hit-testing
type panelLayout struct {
	x, y       int // top-left corner of the border
	width      int // outer width including border
	listWidth  int
	listHeight int
}

func computeLayout(width, height int) panelLayout {
	w := width - 4
	if w > maxPanelWidth {
		w = maxPanelWidth
	}
	if w < 20 {
		w = 20
	}

	lh := height - 8
	if lh > maxListHeight {
		lh = maxListHeight
	}
	if lh < minListHeight {
		lh = minListHeight
	}

	y := height / 6
	if y < 1 {
		y = 1
	}
	x := (width - w) / 2
	if x < 0 {
		x = 0
	}

	return panelLayout{
		x:          x,
		y:          y,
		width:      w,
		listWidth:  w - panelChrome - 2*panelPaddingX,
		listHeight: lh,
	}
}

// height is the outer height of the panel
func (l panelLayout) height() int {
	return panelChrome + panelHeaderRow + l.listHeight
}

// contentX is the first column inside border and padding
func (l panelLayout) contentX() int {
	return l.x + 1 + panelPaddingX
}

func (l panelLayout) inputRow() int {
	return l.y + 1
}

func (l panelLayout) listTop() int {
	return l.y + 1 + panelHeaderRow
}

// contains reports whether the cell is inside the panel border box
func (l panelLayout) contains(x, y int) bool {
	return x >= l.x && x < l.x+l.width && y >= l.y && y < l.y+l.height()
}

// listLine maps a screen row to a painted list line, or -1
func (l panelLayout) listLine(x, y int) int {
	if x < l.contentX() || x >= l.contentX()+l.listWidth {
		return -1
	}
	line := y - l.listTop()
	if line < 0 || line >= l.listHeight {
		return -1
	}
	return line
}

// renderOverlay greys out the base screen and draws the panel on top of it at (x, y)
func renderOverlay(base, panel string, x, y, height int, backdrop lipgloss.Style) string {
	baseLines := strings.Split(ansi.Strip(base), "\n")
	for len(baseLines) < height {
		baseLines = append(baseLines, "")
	}
	if height > 0 && len(baseLines) > height {
		baseLines = baseLines[:height]
	}

	panelLines := strings.Split(panel, "\n")
	out := make([]string, len(baseLines))
	for i, line := range baseLines {
		pi := i - y
		if pi < 0 || pi >= len(panelLines) {
			out[i] = backdrop.Render(line)
			continue
		}
		pl := panelLines[pi]
		left := ansi.Truncate(line, x, "")
		if pad := x - ansi.StringWidth(left); pad > 0 {
			left += strings.Repeat(" ", pad)
		}
		right := ansi.TruncateLeft(line, x+ansi.StringWidth(pl), "")
		out[i] = backdrop.Render(left) + pl + backdrop.Render(right)
	}
	return strings.Join(out, "\n")
}
