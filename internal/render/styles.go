package render

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains the lipgloss styles used to paint the result list
type Styles struct {
	Name      lipgloss.Style
	Subtitle  lipgloss.Style
	Icon      lipgloss.Style
	Selected  lipgloss.Style
	Separator lipgloss.Style
	Loading   lipgloss.Style
	Error     lipgloss.Style
	Suggest   lipgloss.Style
	Empty     lipgloss.Style
	Scroll    lipgloss.Style
	Badge     lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Name:      lipgloss.NewStyle().Bold(true),
		Subtitle:  lipgloss.NewStyle().Faint(true),
		Icon:      lipgloss.NewStyle().PaddingRight(1),
		Selected:  lipgloss.NewStyle().Background(lipgloss.Color("238")),
		Separator: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Loading:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true), // gray
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("203")),              // red
		Suggest:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),   // yellow
		Empty:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Padding(0, 1),
		Scroll:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		Badge: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#000000")).
			Padding(0, 1).
			MarginRight(1),
	}
}

// BadgeStyle returns the badge style tinted with the badge color
func (s *Styles) BadgeStyle(b Badge) lipgloss.Style {
	return s.Badge.Background(lipgloss.Color(b.Color))
}
