package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the palette key bindings
type KeyMap struct {
	Open       key.Binding
	Close      key.Binding
	Up         key.Binding
	Down       key.Binding
	Select     key.Binding
	NewTab     key.Binding
	DismissTag key.Binding
	Help       key.Binding
	Quit       key.Binding
	ForceQuit  key.Binding
}

// DefaultKeyMap returns the default bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Open: key.NewBinding(
			key.WithKeys("ctrl+k"),
			key.WithHelp("ctrl+k", "open palette"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("↑/ctrl+p", "previous"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("↓/ctrl+n", "next"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "run"),
		),
		NewTab: key.NewBinding(
			key.WithKeys("alt+enter"),
			key.WithHelp("alt+enter", "open in new tab"),
		),
		DismissTag: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "leave search type"),
		),
		Help: key.NewBinding(
			key.WithKeys("?", "f1"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// ShortHelp is shown in the footer while the palette is closed
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Help, k.Quit}
}

// FullHelp lists every binding, grouped for the help pager
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Open, k.Close, k.Help, k.Quit, k.ForceQuit},
		{k.Up, k.Down, k.Select, k.NewTab, k.DismissTag},
	}
}

// openHelp is the footer help while the palette is open
type openHelp struct{ KeyMap }

func (k openHelp) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.NewTab, k.Close}
}
