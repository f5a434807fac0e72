package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRow struct{ id int64 }

func (r testRow) RowID() int64 { return r.id }

func TestBus_PublishDeliversToTableSubscribers(t *testing.T) {
	bus := NewBus()

	messages := make(chan Event, 4)
	orders := make(chan Event, 4)
	bus.Subscribe(TableMessages, messages)
	bus.Subscribe(TableOrders, orders)

	bus.Publish(Event{Table: TableMessages, Type: EventInsert, ID: 7, Row: testRow{id: 7}})

	select {
	case evt := <-messages:
		assert.Equal(t, EventInsert, evt.Type)
		assert.Equal(t, int64(7), evt.ID)
	default:
		t.Fatal("expected event on messages channel")
	}

	select {
	case <-orders:
		t.Fatal("orders subscriber must not see message events")
	default:
	}
}

func TestBus_NoDeliveryAfterUnsubscribe(t *testing.T) {
	bus := NewBus()

	ch := make(chan Event, 4)
	bus.Subscribe(TableBookings, ch)

	bus.Publish(Event{Table: TableBookings, Type: EventInsert, ID: 1, Row: testRow{id: 1}})
	bus.Unsubscribe(TableBookings, ch)
	bus.Publish(Event{Table: TableBookings, Type: EventUpdate, ID: 1, Row: testRow{id: 1}})

	evt, ok := <-ch
	require.True(t, ok, "the event published before unsubscribe is still buffered")
	assert.Equal(t, EventInsert, evt.Type)

	_, ok = <-ch
	assert.False(t, ok, "channel must be closed with no further events")
}

func TestBus_UnsubscribeIsIdempotent(t *testing.T) {
	bus := NewBus()

	ch := make(chan Event, 1)
	bus.Subscribe(TableProducts, ch)
	bus.Unsubscribe(TableProducts, ch)

	assert.NotPanics(t, func() {
		bus.Unsubscribe(TableProducts, ch)
	})
}

func TestBus_EvictsSlowSubscriber(t *testing.T) {
	bus := newBus(5*time.Millisecond, 2)

	stuck := make(chan Event) // nobody reads
	healthy := make(chan Event, 8)
	bus.Subscribe(TableOrders, stuck)
	bus.Subscribe(TableOrders, healthy)

	for i := 0; i < 3; i++ {
		bus.Publish(Event{Table: TableOrders, Type: EventInsert, ID: int64(i), Row: testRow{id: int64(i)}})
	}

	_, open := <-stuck
	assert.False(t, open, "stuck subscriber must be evicted and closed")
	assert.Len(t, healthy, 3, "healthy subscriber keeps receiving")
}

func TestBus_CloseDropsEverything(t *testing.T) {
	bus := NewBus()

	a := make(chan Event, 1)
	b := make(chan Event, 1)
	bus.Subscribe(TableMessages, a)
	bus.Subscribe(TableServices, b)

	bus.Close()

	_, ok := <-a
	assert.False(t, ok)
	_, ok = <-b
	assert.False(t, ok)
}
