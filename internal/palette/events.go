package palette

import "cmdpalette/internal/domain"

// Event is an input fed into Controller.Handle
type Event interface {
	isEvent()
}

// Key is a key the controller reacts to while the search input has focus
type Key int

const (
	KeyOther Key = iota
	KeyArrowUp
	KeyArrowDown
	KeyEnter
	KeyEscape
	KeyBackspace
)

// Open shows the palette
type Open struct{}

// Close hides the palette
type Close struct{}

// GlobalKey is a key press seen anywhere in the host, used for the open
// shortcut and for Escape while open
type GlobalKey struct {
	Key  string
	Ctrl bool
	Meta bool
}

// KeyPress is a key pressed inside the search input
type KeyPress struct {
	Key Key
}

// QueryChanged carries the new value of the search input
type QueryChanged struct {
	Value string
}

// Hover is the pointer moving over the entry at Index
type Hover struct {
	Index int
}

// Click is the pointer activating the entry at Index
type Click struct {
	Index int
}

// OverlayClick is a click outside the panel
type OverlayClick struct{}

// FocusOut means the panel lost focus
type FocusOut struct{}

// FocusIn means focus moved somewhere; Inside tells whether it is within the panel
type FocusIn struct {
	Inside bool
}

// BlurCheck is delivered by the host once a ScheduleBlurCheck delay elapsed
type BlurCheck struct {
	Token uint64
}

// ModifierChanged reports the current Ctrl and Meta key state
type ModifierChanged struct {
	Ctrl bool
	Meta bool
}

// TagDismissed is the removal of the search type tag
type TagDismissed struct{}

// RemoteResults is posted back by the dispatcher when a remote search finished
type RemoteResults struct {
	Seq   uint64
	Items []domain.Item
	Err   error
}

func (Open) isEvent()            {}
func (Close) isEvent()           {}
func (GlobalKey) isEvent()       {}
func (KeyPress) isEvent()        {}
func (QueryChanged) isEvent()    {}
func (Hover) isEvent()           {}
func (Click) isEvent()           {}
func (OverlayClick) isEvent()    {}
func (FocusOut) isEvent()        {}
func (FocusIn) isEvent()         {}
func (BlurCheck) isEvent()       {}
func (ModifierChanged) isEvent() {}
func (TagDismissed) isEvent()    {}
func (RemoteResults) isEvent()   {}
