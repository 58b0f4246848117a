package palette

import (
	"time"

	"cmdpalette/internal/domain"
)

// RenderKind tells the host how much of the list to redraw
type RenderKind int

const (
	RenderNone RenderKind = iota
	RenderFull
	RenderSelection
)

func (r RenderKind) String() string {
	switch r {
	case RenderFull:
		return "full"
	case RenderSelection:
		return "selection"
	default:
		return "none"
	}
}

// Effect is an instruction for the host
type Effect interface {
	isEffect()
}

// FocusInput focuses the search input after Delay
type FocusInput struct {
	Delay time.Duration
}

// ScrollIntoView brings the entry at Index into the visible part of the list
type ScrollIntoView struct {
	Index int
}

// Execute runs an item action. NewTab is only ever set for URL actions.
type Execute struct {
	Action domain.Action
	NewTab bool
}

// ScheduleBlurCheck asks the host to send BlurCheck{Token} after Delay
type ScheduleBlurCheck struct {
	Token uint64
	Delay time.Duration
}

// SetInputValue replaces the text of the search input
type SetInputValue struct {
	Value string
}

// ShowTypeTag shows the removable search type tag
type ShowTypeTag struct {
	Type string
}

// HideTypeTag removes the search type tag
type HideTypeTag struct{}

func (FocusInput) isEffect()        {}
func (ScrollIntoView) isEffect()    {}
func (Execute) isEffect()           {}
func (ScheduleBlurCheck) isEffect() {}
func (SetInputValue) isEffect()     {}
func (ShowTypeTag) isEffect()       {}
func (HideTypeTag) isEffect()       {}

// State is a snapshot of the controller. Results must not be modified.
type State struct {
	Open       bool
	Query      string
	Results    []domain.Entry
	Selected   int
	SearchMode *domain.SearchMode
}

// Frame is the outcome of handling one event
type Frame struct {
	State   State
	Render  RenderKind
	Effects []Effect
}
