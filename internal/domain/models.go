package domain

import (
	"encoding/json"
	"fmt"
)

// ActionKind tags the variant held by an Action
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionNavigate
	ActionInvoke
)

// Action is what happens when an item is activated: navigate to a URL,
// invoke a host callback, or nothing at all.
type Action struct {
	Kind    ActionKind
	URL     string       // ActionNavigate
	Command string       // ActionInvoke, stable name used for persistence
	Fn      func() error // ActionInvoke, nil when restored from storage and not yet bound
}

// Navigate returns an action that opens url
func Navigate(url string) Action {
	return Action{Kind: ActionNavigate, URL: url}
}

// Invoke returns an action that runs fn, registered under command
func Invoke(command string, fn func() error) Action {
	return Action{Kind: ActionInvoke, Command: command, Fn: fn}
}

// NoAction is the action of non-actionable entries
func NoAction() Action {
	return Action{}
}

// Key identifies the action for deduplication purposes
func (a Action) Key() string {
	switch a.Kind {
	case ActionNavigate:
		return a.URL
	case ActionInvoke:
		return "cmd:" + a.Command
	default:
		return ""
	}
}

// IsURL reports whether the action navigates somewhere
func (a Action) IsURL() bool {
	return a.Kind == ActionNavigate
}

func (a Action) String() string {
	switch a.Kind {
	case ActionNavigate:
		return a.URL
	case ActionInvoke:
		return fmt.Sprintf("command(%s)", a.Command)
	default:
		return "none"
	}
}

// Item is a single searchable entry
type Item struct {
	Icon     string
	Name     string
	Subtitle string
	Action   Action
	Hidden   bool // inverse of the wire-level "visible" flag so the zero value is visible
}

// ItemKey is the (name, action) identity used to deduplicate items
type ItemKey struct {
	Name   string
	Action string
}

// Key returns the identity of the item
func (i Item) Key() ItemKey {
	return ItemKey{Name: i.Name, Action: i.Action.Key()}
}

// Visible reports whether the item should be listed
func (i Item) Visible() bool {
	return !i.Hidden
}

// itemJSON is the wire shape shared by remote search responses and storage
type itemJSON struct {
	Icon     string  `json:"icon,omitempty"`
	Name     string  `json:"name"`
	Subtitle string  `json:"subtitle,omitempty"`
	Action   *string `json:"action"`
	Command  string  `json:"command,omitempty"`
	Visible  *bool   `json:"visible,omitempty"`
}

// MarshalJSON encodes the item in its wire shape
func (i Item) MarshalJSON() ([]byte, error) {
	w := itemJSON{Icon: i.Icon, Name: i.Name, Subtitle: i.Subtitle}
	switch i.Action.Kind {
	case ActionNavigate:
		url := i.Action.URL
		w.Action = &url
	case ActionInvoke:
		w.Command = i.Action.Command
	}
	if i.Hidden {
		visible := false
		w.Visible = &visible
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the wire shape. Invoke actions come back unbound.
func (i *Item) UnmarshalJSON(data []byte) error {
	var w itemJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*i = Item{Icon: w.Icon, Name: w.Name, Subtitle: w.Subtitle}
	switch {
	case w.Action != nil && *w.Action != "":
		i.Action = Navigate(*w.Action)
	case w.Command != "":
		i.Action = Invoke(w.Command, nil)
	}
	if w.Visible != nil && !*w.Visible {
		i.Hidden = true
	}
	return nil
}

// MarkerKind tags pseudo entries that are not real items
type MarkerKind int

const (
	MarkerNone MarkerKind = iota
	MarkerSeparator
	MarkerLoading
	MarkerError
	MarkerSuggestion
)

func (k MarkerKind) String() string {
	switch k {
	case MarkerSeparator:
		return "separator"
	case MarkerLoading:
		return "loading"
	case MarkerError:
		return "error"
	case MarkerSuggestion:
		return "suggestion"
	default:
		return "item"
	}
}

// TypeMatch is the result of matching a query word against a search type
type TypeMatch struct {
	Type        string
	MatchedWord string
	Distance    int
}

// Suggestion is carried by a suggestion marker: the type to search and the
// residual terms once the type word has been removed
type Suggestion struct {
	Type  string
	Terms string
}

// Entry is one row of the result list: either an item or a marker
type Entry struct {
	Item       Item
	Marker     MarkerKind
	Suggestion Suggestion // MarkerSuggestion only
	Message    string     // MarkerError only
}

// ItemEntry wraps a real item
func ItemEntry(item Item) Entry {
	return Entry{Item: item}
}

// SeparatorEntry returns a divider marker
func SeparatorEntry() Entry {
	return Entry{Marker: MarkerSeparator}
}

// LoadingEntry returns a loading placeholder
func LoadingEntry() Entry {
	return Entry{Marker: MarkerLoading}
}

// ErrorEntry returns an error placeholder
func ErrorEntry(message string) Entry {
	return Entry{Marker: MarkerError, Message: message}
}

// SuggestionEntry returns a search-mode suggestion
func SuggestionEntry(match TypeMatch, terms string) Entry {
	return Entry{
		Marker:     MarkerSuggestion,
		Suggestion: Suggestion{Type: match.Type, Terms: terms},
	}
}

// IsItem reports whether the entry is a real, selectable item
func (e Entry) IsItem() bool {
	return e.Marker == MarkerNone
}

// IsSeparator reports whether the entry is a divider
func (e Entry) IsSeparator() bool {
	return e.Marker == MarkerSeparator
}

// SearchMode is the active remote search scope
type SearchMode struct {
	Type  string
	Query string
}
