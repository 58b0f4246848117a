// Package render turns the controller's result list into rows and paints them.
//
// List keeps a virtual copy of what is on screen. A new entry sequence
// rebuilds every row; a selection change on the same sequence only flips the
// Selected flag of the previous and the new row.
package render

import (
	"regexp"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/x/ansi"

	"cmdpalette/internal/domain"
	"cmdpalette/internal/i18n"
)

// IconKind tells the painter how to treat an icon value
type IconKind int

const (
	IconNone IconKind = iota
	IconImage
	IconMarkup
	IconText
)

// RowKind mirrors the entry marker, plus the placeholder shown for an empty list
type RowKind int

const (
	RowItem RowKind = iota
	RowSeparator
	RowLoading
	RowError
	RowSuggestion
	RowEmpty
)

// Row is one painted line of the result list
type Row struct {
	Kind     RowKind
	Index    int // entry index, -1 for the empty placeholder
	Icon     string
	IconKind IconKind
	Name     string
	Subtitle string
	Badge    *Badge
	Selected bool
}

// Interactive reports whether hover and click apply to the row
func (r Row) Interactive() bool {
	return r.Kind != RowSeparator && r.Kind != RowEmpty
}

// Patch describes what the last Render call changed
type Patch struct {
	Full    bool
	Changed []int // rows whose Selected flag flipped when Full is false
}

// Stats counts render outcomes
type Stats struct {
	Full      int
	Toggles   int
	Unchanged int
}

// Options configures a List
type Options struct {
	AllowMarkupIcons bool
	Styles           *Styles
}

var imageIcon = regexp.MustCompile(`^https?://`)

// List is the virtual result list
type List struct {
	opts        Options
	styles      *Styles
	rows        []Row
	fingerprint uint64
	rendered    bool
	selected    int
	stats       Stats

	painted    []string
	paintWidth int
	offset     int
}

// NewList creates an empty list
func NewList(opts Options) *List {
	styles := opts.Styles
	if styles == nil {
		styles = NewStyles()
	}
	return &List{opts: opts, styles: styles, selected: -1}
}

// Render reconciles the list with entries and the selected index
func (l *List) Render(entries []domain.Entry, selected int, locale string) Patch {
	fp := Fingerprint(entries, locale)

	if l.rendered && fp == l.fingerprint {
		if selected == l.selected {
			l.stats.Unchanged++
			return Patch{}
		}
		var changed []int
		for _, idx := range []int{l.selected, selected} {
			if idx >= 0 && idx < len(l.rows) && l.rows[idx].Index >= 0 {
				l.rows[idx].Selected = idx == selected
				l.invalidate(idx)
				changed = append(changed, idx)
			}
		}
		l.selected = selected
		l.stats.Toggles++
		return Patch{Changed: changed}
	}

	l.rows = l.build(entries, selected, locale)
	l.fingerprint = fp
	l.rendered = true
	l.selected = selected
	l.painted = nil
	l.offset = 0
	l.stats.Full++
	return Patch{Full: true}
}

func (l *List) build(entries []domain.Entry, selected int, locale string) []Row {
	if len(entries) == 0 {
		return []Row{{Kind: RowEmpty, Index: -1, Name: i18n.T(i18n.KeyNoResults, locale)}}
	}

	rows := make([]Row, len(entries))
	for i, e := range entries {
		row := Row{Index: i, Selected: i == selected}
		switch e.Marker {
		case domain.MarkerSeparator:
			row.Kind = RowSeparator
			row.Selected = false
		case domain.MarkerLoading:
			row.Kind = RowLoading
			row.Name = i18n.T(i18n.KeyLoading, locale)
		case domain.MarkerError:
			row.Kind = RowError
			row.Name = i18n.T(i18n.KeySearchError, locale)
			row.Subtitle = e.Message
		case domain.MarkerSuggestion:
			row.Kind = RowSuggestion
			row.Icon = "🔍"
			row.IconKind = IconText
			row.Name = i18n.T(i18n.KeySearchIn, locale) + " " + e.Suggestion.Type
			row.Subtitle = e.Suggestion.Terms
			if row.Subtitle == "" {
				row.Subtitle = i18n.T(i18n.KeyTypeToSearch, locale)
			}
		default:
			row.Kind = RowItem
			row.Icon, row.IconKind = l.icon(e.Item.Icon)
			row.Name = e.Item.Name
			row.Subtitle = e.Item.Subtitle
			if e.Item.Action.IsURL() {
				row.Badge = BadgeFor(e.Item.Action.URL)
			}
		}
		rows[i] = row
	}
	return rows
}

func (l *List) icon(icon string) (string, IconKind) {
	switch {
	case icon == "":
		return "", IconNone
	case imageIcon.MatchString(icon):
		return icon, IconImage
	case l.opts.AllowMarkupIcons:
		return icon, IconMarkup
	default:
		return ansi.Strip(icon), IconText
	}
}

// Rows returns the current rows
func (l *List) Rows() []Row {
	return l.rows
}

// Selected returns the selected entry index
func (l *List) Selected() int {
	return l.selected
}

// Stats returns the render counters
func (l *List) Stats() Stats {
	return l.stats
}

// Fingerprint hashes everything that changes the rows except the selection
func Fingerprint(entries []domain.Entry, locale string) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(locale)
	_, _ = d.WriteString("\x1f")
	_, _ = d.WriteString(strconv.Itoa(len(entries)))
	for _, e := range entries {
		_, _ = d.WriteString("\x1e")
		_, _ = d.WriteString(e.Marker.String())
		_, _ = d.WriteString("\x1f")
		switch e.Marker {
		case domain.MarkerSuggestion:
			_, _ = d.WriteString(e.Suggestion.Type)
			_, _ = d.WriteString("\x1f")
			_, _ = d.WriteString(e.Suggestion.Terms)
		case domain.MarkerError:
			_, _ = d.WriteString(e.Message)
		case domain.MarkerNone:
			_, _ = d.WriteString(e.Item.Name)
			_, _ = d.WriteString("\x1f")
			_, _ = d.WriteString(e.Item.Subtitle)
			_, _ = d.WriteString("\x1f")
			_, _ = d.WriteString(e.Item.Icon)
			_, _ = d.WriteString("\x1f")
			_, _ = d.WriteString(e.Item.Action.Key())
		}
	}
	return d.Sum64()
}
