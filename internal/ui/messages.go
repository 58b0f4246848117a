package ui

import (
	"cmdpalette/internal/eventbus"
	"cmdpalette/internal/palette"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// PaletteEventMsg carries a controller event posted from another goroutine
type PaletteEventMsg struct {
	Event palette.Event
}

// focusInputMsg focuses the search input once the open delay elapsed
type focusInputMsg struct{}

// blurCheckMsg is the delayed follow-up of a focus loss
type blurCheckMsg struct {
	token uint64
}

// actionDoneMsg reports the outcome of an executed item action
type actionDoneMsg struct {
	name   string
	target string
	newTab bool
	err    error
}

// helpPagerMsg contains the result of a help pager command
type helpPagerMsg struct {
	err error
}
