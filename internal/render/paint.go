package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const imageGlyph = "▣"

// Paint draws the visible window of rows, one line per row, keeping the
// selected row inside the window. Painted rows are cached until the next
// full render so a selection toggle only repaints two lines.
func (l *List) Paint(width, height int) string {
	if width < 1 || height < 1 || len(l.rows) == 0 {
		return ""
	}
	if width != l.paintWidth || len(l.painted) != len(l.rows) {
		l.painted = make([]string, len(l.rows))
		l.paintWidth = width
	}

	if l.selected >= 0 {
		l.ScrollIntoView(l.selected, height)
	}

	top, bottom, start, end := l.window(height)

	lines := make([]string, 0, height)
	if top {
		lines = append(lines, l.styles.Scroll.Render(fmt.Sprintf("↑ %d more", start)))
	}
	for i := start; i < end; i++ {
		if l.painted[i] == "" {
			l.painted[i] = l.paintRow(l.rows[i], width)
		}
		lines = append(lines, l.painted[i])
	}
	if bottom {
		lines = append(lines, l.styles.Scroll.Render(fmt.Sprintf("↓ %d more", len(l.rows)-end)))
	}
	return strings.Join(lines, "\n")
}

// ScrollIntoView moves the viewport the least amount needed to show index
func (l *List) ScrollIntoView(index, height int) {
	if index < 0 || index >= len(l.rows) || height < 1 {
		return
	}
	if index < l.offset {
		l.offset = index
		return
	}
	for {
		_, _, start, end := l.window(height)
		if index < end || start == index {
			return
		}
		l.offset++
	}
}

// Offset is the index of the first row in the viewport
func (l *List) Offset() int {
	return l.offset
}

// RowAt maps a line of the painted output back to an entry index, or -1
// when the line is an indicator, a divider or outside the list
func (l *List) RowAt(line, height int) int {
	top, _, start, end := l.window(height)
	if top {
		line--
	}
	idx := start + line
	if line < 0 || idx >= end {
		return -1
	}
	if !l.rows[idx].Interactive() {
		return -1
	}
	return l.rows[idx].Index
}

// window computes scroll indicators and the visible row range for height lines
func (l *List) window(height int) (top, bottom bool, start, end int) {
	total := len(l.rows)
	start = l.offset
	top = start > 0

	avail := height
	if top {
		avail--
	}
	if start+avail < total {
		bottom = true
		avail--
	}
	if avail < 1 {
		avail = 1
	}
	end = start + avail
	if end > total {
		end = total
	}
	return top, bottom, start, end
}

func (l *List) invalidate(i int) {
	if i >= 0 && i < len(l.painted) {
		l.painted[i] = ""
	}
}

func (l *List) paintRow(r Row, width int) string {
	s := l.styles
	var line string

	switch r.Kind {
	case RowSeparator:
		return s.Separator.Render(strings.Repeat("─", width))
	case RowEmpty:
		return s.Empty.Render(ansi.Truncate(r.Name, width, "…"))
	case RowLoading:
		line = s.Loading.Render(r.Name)
	case RowError:
		line = s.Error.Render("⚠ " + r.Name)
		if r.Subtitle != "" {
			line += " " + s.Subtitle.Render(r.Subtitle)
		}
	case RowSuggestion:
		line = s.Icon.Render(r.Icon) + s.Suggest.Render(r.Name)
		if r.Subtitle != "" {
			line += " " + s.Subtitle.Render(r.Subtitle)
		}
	default:
		switch r.IconKind {
		case IconImage:
			line = s.Icon.Render(imageGlyph)
		case IconMarkup, IconText:
			line = s.Icon.Render(r.Icon)
		}
		if r.Badge != nil {
			line += s.BadgeStyle(*r.Badge).Render(r.Badge.Label)
		}
		line += s.Name.Render(r.Name)
		if r.Subtitle != "" {
			line += " " + s.Subtitle.Render(r.Subtitle)
		}
	}

	line = " " + line
	line = ansi.Truncate(line, width, "…")
	if pad := width - lipgloss.Width(line); pad > 0 {
		line += strings.Repeat(" ", pad)
	}
	if r.Selected {
		line = s.Selected.Render(line)
	}
	return line
}
