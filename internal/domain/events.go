package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventPaletteOpened      EventType = "PaletteOpened"
	EventPaletteClosed      EventType = "PaletteClosed"
	EventItemSelected       EventType = "ItemSelected"
	EventSearchModeEntered  EventType = "SearchModeEntered"
	EventSearchModeExited   EventType = "SearchModeExited"
	EventRemoteSearchFailed EventType = "RemoteSearchFailed"
	EventLinksHarvested     EventType = "LinksHarvested"
	EventConfigSaved        EventType = "ConfigSaved"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// PaletteOpenedEvent is emitted when a palette is shown
type PaletteOpenedEvent struct {
	PaletteID string
}

func (e PaletteOpenedEvent) Type() EventType { return EventPaletteOpened }

// PaletteClosedEvent is emitted when a palette is hidden
type PaletteClosedEvent struct {
	PaletteID string
	Reason    string
}

func (e PaletteClosedEvent) Type() EventType { return EventPaletteClosed }

// ItemSelectedEvent is emitted when an item is activated
type ItemSelectedEvent struct {
	PaletteID string
	Item      Item
	NewTab    bool
}

func (e ItemSelectedEvent) Type() EventType { return EventItemSelected }

// SearchModeEnteredEvent is emitted when the palette switches to remote search
type SearchModeEnteredEvent struct {
	PaletteID  string
	SearchType string
	Terms      string
}

func (e SearchModeEnteredEvent) Type() EventType { return EventSearchModeEntered }

// SearchModeExitedEvent is emitted when the palette returns to local browsing
type SearchModeExitedEvent struct {
	PaletteID  string
	SearchType string
}

func (e SearchModeExitedEvent) Type() EventType { return EventSearchModeExited }

// RemoteSearchFailedEvent is emitted when the search endpoint returns an error
type RemoteSearchFailedEvent struct {
	PaletteID string
	Query     string
	Err       error
}

func (e RemoteSearchFailedEvent) Type() EventType { return EventRemoteSearchFailed }

// LinksHarvestedEvent is emitted after the link harvester ran at construction
type LinksHarvestedEvent struct {
	PaletteID string
	Count     int
}

func (e LinksHarvestedEvent) Type() EventType { return EventLinksHarvested }

// ConfigSavedEvent is emitted when the config file is written
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }
