package eventbus

import (
	"runtime/debug"
	"sync"

	"github.com/charmbracelet/log"

	"cmdpalette/internal/domain"
)

// Re-export domain types for convenience
type DomainEvent = domain.DomainEvent
type EventType = domain.EventType

// Event type constants
const (
	EventPaletteOpened      = domain.EventPaletteOpened
	EventPaletteClosed      = domain.EventPaletteClosed
	EventItemSelected       = domain.EventItemSelected
	EventSearchModeEntered  = domain.EventSearchModeEntered
	EventSearchModeExited   = domain.EventSearchModeExited
	EventRemoteSearchFailed = domain.EventRemoteSearchFailed
	EventLinksHarvested     = domain.EventLinksHarvested
	EventConfigSaved        = domain.EventConfigSaved
)

// Re-export domain event types
type PaletteOpenedEvent = domain.PaletteOpenedEvent
type PaletteClosedEvent = domain.PaletteClosedEvent
type ItemSelectedEvent = domain.ItemSelectedEvent
type SearchModeEnteredEvent = domain.SearchModeEnteredEvent
type SearchModeExitedEvent = domain.SearchModeExitedEvent
type RemoteSearchFailedEvent = domain.RemoteSearchFailedEvent
type LinksHarvestedEvent = domain.LinksHarvestedEvent
type ConfigSavedEvent = domain.ConfigSavedEvent

// EventHandler is a function that handles domain events
type EventHandler func(DomainEvent)

// EventBus is the interface for the event bus
type EventBus interface {
	Publish(event DomainEvent)
	Subscribe(eventType EventType, handler EventHandler) func()
}

type subscription struct {
	id      uint64
	handler EventHandler
}

// Bus is the asynchronous EventBus implementation
type Bus struct {
	mu        sync.RWMutex
	handlers  map[EventType][]subscription
	nextID    uint64
	eventChan chan DomainEvent
	wg        sync.WaitGroup
	quit      chan struct{}
	closeOnce sync.Once
	logger    *log.Logger
}

// New creates a new event bus and starts its dispatcher
func New(logger *log.Logger) *Bus {
	if logger == nil {
		logger = log.Default()
	}
	b := &Bus{
		handlers:  make(map[EventType][]subscription),
		eventChan: make(chan DomainEvent, 256),
		quit:      make(chan struct{}),
		logger:    logger,
	}

	b.wg.Add(1)
	go b.dispatch()

	return b
}

// Publish queues an event for all subscribers. Events are dropped when the queue is full.
func (b *Bus) Publish(event DomainEvent) {
	b.logger.Debug("Publishing event", "type", event.Type())

	select {
	case b.eventChan <- event:
	default:
		b.logger.Warn("Event bus channel full, dropping event", "type", event.Type())
	}
}

// Subscribe subscribes to events of a specific type.
// Returns an unsubscribe function.
func (b *Bus) Subscribe(eventType EventType, handler EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subs := b.handlers[eventType]
		for i, s := range subs {
			if s.id == id {
				b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
	}
}

// Close stops the dispatcher; queued events are discarded
func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		close(b.quit)
	})
	b.wg.Wait()
}

func (b *Bus) dispatch() {
	defer b.wg.Done()

	for {
		select {
		case event := <-b.eventChan:
			b.mu.RLock()
			subs := make([]subscription, len(b.handlers[event.Type()]))
			copy(subs, b.handlers[event.Type()])
			b.mu.RUnlock()

			for _, s := range subs {
				b.deliver(s.handler, event)
			}

		case <-b.quit:
			for {
				select {
				case <-b.eventChan:
				default:
					return
				}
			}
		}
	}
}

// deliver runs a handler in order on the dispatcher goroutine and survives panics
func (b *Bus) deliver(h EventHandler, event DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Event handler panic", "type", event.Type(), "panic", r, "stack", string(debug.Stack()))
		}
	}()
	h(event)
}

// NullBus drops every event
type NullBus struct{}

func (NullBus) Publish(event DomainEvent) {}
func (NullBus) Subscribe(eventType EventType, handler EventHandler) func() {
	return func() {}
}
