// Package palette holds the command palette state machine.
//
// The controller never draws anything: every input is an Event passed to
// Handle, which returns the new State, how much of the list to redraw and a
// list of Effects the host has to carry out.
package palette

import (
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"cmdpalette/internal/domain"
	"cmdpalette/internal/eventbus"
	"cmdpalette/internal/fuzzy"
	"cmdpalette/internal/recent"
	"cmdpalette/internal/remote"
)

const (
	// FocusDelay lets the host finish showing the panel before focusing the input
	FocusDelay = 20 * time.Millisecond
	// BlurDelay tolerates the focus flicker caused by clicking inside the panel
	BlurDelay = 150 * time.Millisecond
	// LoadingPlaceholders is the number of rows shown while a search runs
	LoadingPlaceholders = 3
)

// Close reasons published with PaletteClosedEvent
const (
	ReasonEscape   = "escape"
	ReasonOverlay  = "overlay"
	ReasonBlur     = "blur"
	ReasonSelected = "selected"
	ReasonExplicit = "explicit"
)

// Searcher is the remote search client as seen by the controller
type Searcher interface {
	MatchType(query string) *domain.TypeMatch
	ExtractSearchTerms(query, matchedWord string) string
	DebouncedSearch(query, typ string, callback remote.Callback)
	Cancel()
}

// Recent is the recent-items cache as seen by the controller
type Recent interface {
	Get() []domain.Item
	Add(item domain.Item)
}

// Dispatcher posts an event back to the goroutine that owns the controller
type Dispatcher func(Event)

// Config wires a controller
type Config struct {
	ID       string
	Items    []domain.Item
	Locale   string
	Searcher Searcher // nil disables remote search
	Recent   Recent   // nil disables recent items
	Dispatch Dispatcher
	Bus      eventbus.EventBus
	Logger   *log.Logger
}

// Modifiers tracks the Ctrl and Meta key state
type Modifiers struct {
	Ctrl bool
	Meta bool
}

// Held reports whether a new-tab modifier is pressed
func (m Modifiers) Held() bool {
	return m.Ctrl || m.Meta
}

// Controller is the palette state machine. It is not safe for concurrent
// use; results of remote searches come back through the Dispatcher.
type Controller struct {
	id       string
	items    []domain.Item
	locale   string
	searcher Searcher
	recent   Recent
	dispatch Dispatcher
	bus      eventbus.EventBus
	logger   *log.Logger

	open      bool
	query     string
	results   []domain.Entry
	selected  int
	mode      *domain.SearchMode
	modifiers Modifiers
	blurToken uint64
	seq       uint64
}

// New creates a closed controller
func New(cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	bus := cfg.Bus
	if bus == nil {
		bus = eventbus.NullBus{}
	}
	dispatch := cfg.Dispatch
	if dispatch == nil {
		dispatch = func(ev Event) {
			logger.Warn("No dispatcher configured, dropping event", "event", ev)
		}
	}

	visible := make([]domain.Item, 0, len(cfg.Items))
	for _, item := range cfg.Items {
		if item.Visible() {
			visible = append(visible, item)
		}
	}

	return &Controller{
		id:       cfg.ID,
		items:    visible,
		locale:   cfg.Locale,
		searcher: cfg.Searcher,
		recent:   cfg.Recent,
		dispatch: dispatch,
		bus:      bus,
		logger:   logger,
		selected: -1,
	}
}

// ID returns the instance id
func (c *Controller) ID() string {
	return c.id
}

// Locale returns the locale used for labels
func (c *Controller) Locale() string {
	return c.locale
}

// Items returns the visible items the palette was built with
func (c *Controller) Items() []domain.Item {
	return c.items
}

// IsOpen reports whether the palette is shown
func (c *Controller) IsOpen() bool {
	return c.open
}

// State returns the current state
func (c *Controller) State() State {
	var mode *domain.SearchMode
	if c.mode != nil {
		m := *c.mode
		mode = &m
	}
	return State{
		Open:       c.open,
		Query:      c.query,
		Results:    c.results,
		Selected:   c.selected,
		SearchMode: mode,
	}
}

// Handle applies one event and returns the resulting frame
func (c *Controller) Handle(ev Event) Frame {
	var f Frame

	switch e := ev.(type) {
	case Open:
		f = c.openPalette()
	case Close:
		f = c.closePalette(ReasonExplicit)
	case GlobalKey:
		f = c.globalKey(e)
	case KeyPress:
		f = c.keyPress(e.Key)
	case QueryChanged:
		f = c.queryChanged(e.Value)
	case Hover:
		f = c.hover(e.Index)
	case Click:
		f = c.click(e.Index)
	case OverlayClick:
		f = c.closePalette(ReasonOverlay)
	case FocusOut:
		f = c.focusOut()
	case FocusIn:
		if e.Inside {
			c.blurToken++
		} else {
			f = c.focusOut()
		}
	case BlurCheck:
		if c.open && e.Token == c.blurToken {
			f = c.closePalette(ReasonBlur)
		}
	case ModifierChanged:
		c.modifiers = Modifiers{Ctrl: e.Ctrl, Meta: e.Meta}
	case TagDismissed:
		if c.mode != nil {
			f = c.exitSearchMode()
		}
	case RemoteResults:
		f = c.remoteResults(e)
	default:
		c.logger.Warn("Unknown palette event", "event", ev)
	}

	f.State = c.State()
	return f
}

func (c *Controller) openPalette() Frame {
	if c.open {
		return Frame{}
	}
	c.open = true
	c.query = ""
	c.mode = nil
	c.results = c.baseList()
	c.selected = c.firstSelectable()
	c.logger.Debug("Palette opened", "id", c.id, "entries", len(c.results))
	c.bus.Publish(eventbus.PaletteOpenedEvent{PaletteID: c.id})

	return Frame{
		Render: RenderFull,
		Effects: []Effect{
			SetInputValue{Value: ""},
			FocusInput{Delay: FocusDelay},
		},
	}
}

func (c *Controller) closePalette(reason string) Frame {
	if !c.open {
		return Frame{}
	}
	c.open = false
	c.blurToken++

	var effects []Effect
	if c.mode != nil {
		c.stopRemote()
		c.bus.Publish(eventbus.SearchModeExitedEvent{PaletteID: c.id, SearchType: c.mode.Type})
		c.mode = nil
		effects = append(effects, HideTypeTag{})
	}
	c.logger.Debug("Palette closed", "id", c.id, "reason", reason)
	c.bus.Publish(eventbus.PaletteClosedEvent{PaletteID: c.id, Reason: reason})
	return Frame{Effects: effects}
}

func (c *Controller) globalKey(e GlobalKey) Frame {
	if (e.Ctrl || e.Meta) && strings.EqualFold(e.Key, "k") {
		return c.openPalette()
	}
	if c.open && (e.Key == "esc" || e.Key == "escape") {
		return c.closePalette(ReasonEscape)
	}
	return Frame{}
}

func (c *Controller) keyPress(k Key) Frame {
	if !c.open {
		return Frame{}
	}
	switch k {
	case KeyArrowDown:
		return c.move(1)
	case KeyArrowUp:
		return c.move(-1)
	case KeyEnter:
		return c.activate(c.selected)
	case KeyEscape:
		return c.closePalette(ReasonEscape)
	case KeyBackspace:
		if c.mode != nil && c.query == "" {
			return c.exitSearchMode()
		}
	}
	return Frame{}
}

func (c *Controller) queryChanged(value string) Frame {
	if !c.open {
		return Frame{}
	}
	c.query = value
	if c.mode != nil {
		c.mode.Query = value
		return c.performRemoteSearch(value)
	}

	c.results = c.localResults(value)
	c.selected = c.firstSelectable()
	return Frame{Render: RenderFull}
}

// localResults ranks the merged list as one pool, so a recent entry only
// wins ties and the separator never survives filtering
func (c *Controller) localResults(query string) []domain.Entry {
	if strings.TrimSpace(query) == "" {
		return c.baseList()
	}

	var pool []domain.Item
	for _, e := range c.baseList() {
		if e.IsItem() {
			pool = append(pool, e.Item)
		}
	}
	matched := fuzzy.Filter(query, pool)
	entries := make([]domain.Entry, 0, len(matched)+1)
	for _, item := range matched {
		entries = append(entries, domain.ItemEntry(item))
	}

	if c.searcher != nil {
		if m := c.searcher.MatchType(query); m != nil {
			terms := c.searcher.ExtractSearchTerms(query, m.MatchedWord)
			entries = append([]domain.Entry{domain.SuggestionEntry(*m, terms)}, entries...)
		}
	}
	return entries
}

func (c *Controller) enterSearchMode(s domain.Suggestion) Frame {
	c.mode = &domain.SearchMode{Type: s.Type, Query: s.Terms}
	c.query = s.Terms
	c.logger.Debug("Search mode entered", "type", s.Type, "terms", s.Terms)
	c.bus.Publish(eventbus.SearchModeEnteredEvent{PaletteID: c.id, SearchType: s.Type, Terms: s.Terms})

	f := c.performRemoteSearch(s.Terms)
	f.Effects = append([]Effect{
		SetInputValue{Value: s.Terms},
		ShowTypeTag{Type: s.Type},
		FocusInput{},
	}, f.Effects...)
	return f
}

func (c *Controller) exitSearchMode() Frame {
	typ := c.mode.Type
	c.stopRemote()
	c.mode = nil
	c.query = ""
	c.results = c.baseList()
	c.selected = c.firstSelectable()
	c.logger.Debug("Search mode exited", "type", typ)
	c.bus.Publish(eventbus.SearchModeExitedEvent{PaletteID: c.id, SearchType: typ})

	return Frame{
		Render: RenderFull,
		Effects: []Effect{
			HideTypeTag{},
			SetInputValue{Value: ""},
			FocusInput{},
		},
	}
}

// performRemoteSearch swaps in the loading rows and starts a debounced search
func (c *Controller) performRemoteSearch(query string) Frame {
	if strings.TrimSpace(query) == "" {
		c.stopRemote()
		c.results = nil
		c.selected = -1
		return Frame{Render: RenderFull}
	}

	c.seq++
	seq := c.seq
	c.results = make([]domain.Entry, LoadingPlaceholders)
	for i := range c.results {
		c.results[i] = domain.LoadingEntry()
	}
	c.selected = -1

	if c.searcher != nil {
		dispatch := c.dispatch
		c.searcher.DebouncedSearch(query, c.mode.Type, func(items []domain.Item, err error) {
			dispatch(RemoteResults{Seq: seq, Items: items, Err: err})
		})
	}
	return Frame{Render: RenderFull}
}

func (c *Controller) remoteResults(e RemoteResults) Frame {
	if !c.open || c.mode == nil || e.Seq != c.seq {
		c.logger.Debug("Stale remote results dropped", "seq", e.Seq, "current", c.seq)
		return Frame{}
	}

	if e.Err != nil {
		c.results = []domain.Entry{domain.ErrorEntry(e.Err.Error())}
		c.selected = -1
		c.bus.Publish(eventbus.RemoteSearchFailedEvent{PaletteID: c.id, Query: c.query, Err: e.Err})
		return Frame{Render: RenderFull}
	}

	c.results = make([]domain.Entry, 0, len(e.Items))
	for _, item := range e.Items {
		if item.Visible() {
			c.results = append(c.results, domain.ItemEntry(item))
		}
	}
	c.selected = c.firstSelectable()
	return Frame{Render: RenderFull}
}

func (c *Controller) stopRemote() {
	c.seq++
	if c.searcher != nil {
		c.searcher.Cancel()
	}
}

// move steps the selection cyclically, skipping entries that cannot be selected
func (c *Controller) move(step int) Frame {
	n := len(c.results)
	if n == 0 {
		return Frame{}
	}

	idx := c.selected
	if idx < 0 {
		if step > 0 {
			idx = -1
		} else {
			idx = n
		}
	}
	for tries := 0; tries < n; tries++ {
		idx = ((idx+step)%n + n) % n
		if c.selectable(idx) {
			c.selected = idx
			return Frame{
				Render:  RenderSelection,
				Effects: []Effect{ScrollIntoView{Index: idx}},
			}
		}
	}
	return Frame{}
}

func (c *Controller) hover(idx int) Frame {
	if !c.open || idx == c.selected || !c.selectable(idx) {
		return Frame{}
	}
	c.selected = idx
	return Frame{Render: RenderSelection}
}

func (c *Controller) click(idx int) Frame {
	if !c.open || !c.selectable(idx) {
		return Frame{}
	}
	c.selected = idx
	return c.activate(idx)
}

// activate runs the entry at idx: a suggestion enters search mode, an item is
// recorded, executed and closes the palette
func (c *Controller) activate(idx int) Frame {
	if !c.open || idx < 0 || idx >= len(c.results) {
		return Frame{}
	}

	entry := c.results[idx]
	switch entry.Marker {
	case domain.MarkerSuggestion:
		return c.enterSearchMode(entry.Suggestion)
	case domain.MarkerNone:
	default:
		return Frame{}
	}

	item := entry.Item
	if c.recent != nil {
		c.recent.Add(item)
	}
	newTab := item.Action.IsURL() && c.modifiers.Held()
	c.logger.Debug("Item selected", "name", item.Name, "action", item.Action, "newTab", newTab)
	c.bus.Publish(eventbus.ItemSelectedEvent{PaletteID: c.id, Item: item, NewTab: newTab})

	f := c.closePalette(ReasonSelected)
	f.Effects = append([]Effect{Execute{Action: item.Action, NewTab: newTab}}, f.Effects...)
	return f
}

func (c *Controller) focusOut() Frame {
	if !c.open {
		return Frame{}
	}
	c.blurToken++
	return Frame{Effects: []Effect{ScheduleBlurCheck{Token: c.blurToken, Delay: BlurDelay}}}
}

// baseList is recent items merged with all items
func (c *Controller) baseList() []domain.Entry {
	return recent.Merge(c.recentItems(), c.items)
}

func (c *Controller) recentItems() []domain.Item {
	if c.recent == nil {
		return nil
	}
	var out []domain.Item
	for _, item := range c.recent.Get() {
		if item.Visible() {
			out = append(out, item)
		}
	}
	return out
}

func (c *Controller) selectable(idx int) bool {
	if idx < 0 || idx >= len(c.results) {
		return false
	}
	switch c.results[idx].Marker {
	case domain.MarkerNone, domain.MarkerSuggestion:
		return true
	default:
		return false
	}
}

func (c *Controller) firstSelectable() int {
	for i := range c.results {
		if c.selectable(i) {
			return i
		}
	}
	return -1
}
