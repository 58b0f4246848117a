package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cmdpalette/internal/logging"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	bus := New(logging.Discard())
	defer bus.Close()

	got := make(chan DomainEvent, 1)
	bus.Subscribe(EventPaletteOpened, func(e DomainEvent) { got <- e })

	bus.Publish(PaletteOpenedEvent{PaletteID: "main"})

	select {
	case e := <-got:
		require.Equal(t, PaletteOpenedEvent{PaletteID: "main"}, e)
	case <-time.After(time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := New(logging.Discard())
	defer bus.Close()

	first := make(chan DomainEvent, 4)
	second := make(chan DomainEvent, 4)
	unsubscribe := bus.Subscribe(EventPaletteClosed, func(e DomainEvent) { first <- e })
	bus.Subscribe(EventPaletteClosed, func(e DomainEvent) { second <- e })

	unsubscribe()
	bus.Publish(PaletteClosedEvent{PaletteID: "main", Reason: "escape"})

	select {
	case <-second:
	case <-time.After(time.Second):
		t.Fatal("remaining subscriber was not called")
	}
	require.Empty(t, first)
}

func TestHandlerPanicDoesNotStopDispatcher(t *testing.T) {
	bus := New(logging.Discard())
	defer bus.Close()

	got := make(chan DomainEvent, 1)
	bus.Subscribe(EventItemSelected, func(e DomainEvent) { panic("boom") })
	bus.Subscribe(EventSearchModeEntered, func(e DomainEvent) { got <- e })

	bus.Publish(ItemSelectedEvent{PaletteID: "main"})
	bus.Publish(SearchModeEnteredEvent{PaletteID: "main", SearchType: "users"})

	select {
	case e := <-got:
		require.Equal(t, EventSearchModeEntered, e.Type())
	case <-time.After(time.Second):
		t.Fatal("dispatcher stopped after a panicking handler")
	}
}
