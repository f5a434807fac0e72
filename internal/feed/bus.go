package feed

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultWriteTimeout     = time.Second
	defaultFailureThreshold = 3
)

// Bus fans row-level deltas out to per-table subscriber channels.
// Repositories publish exactly one event per successful write; subscribers
// that stop draining are evicted after repeated write timeouts so one stuck
// consumer cannot wedge the feed.
type Bus struct {
	writeTimeout     time.Duration
	failureThreshold int

	mu       sync.RWMutex
	tables   map[string]map[chan<- Event]struct{}
	failures map[chan<- Event]int
}

func NewBus() *Bus {
	return newBus(defaultWriteTimeout, defaultFailureThreshold)
}

func newBus(writeTimeout time.Duration, failureThreshold int) *Bus {
	return &Bus{
		writeTimeout:     writeTimeout,
		failureThreshold: failureThreshold,
		tables:           make(map[string]map[chan<- Event]struct{}),
		failures:         make(map[chan<- Event]int),
	}
}

func (b *Bus) Subscribe(table string, ch chan<- Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.tables[table]
	if !ok {
		subs = make(map[chan<- Event]struct{})
		b.tables[table] = subs
	}
	subs[ch] = struct{}{}
}

// Unsubscribe removes the channel and closes it. Closing is the signal to
// the consumer goroutine that no further events will arrive.
func (b *Bus) Unsubscribe(table string, ch chan<- Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unsubscribeLocked(table, ch)
}

func (b *Bus) unsubscribeLocked(table string, ch chan<- Event) {
	subs, ok := b.tables[table]
	if !ok {
		return
	}
	if _, ok := subs[ch]; !ok {
		return
	}
	delete(subs, ch)
	delete(b.failures, ch)
	close(ch)
}

// Close drops every subscriber. Used on shutdown.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for table, subs := range b.tables {
		for ch := range subs {
			b.unsubscribeLocked(table, ch)
		}
	}
}

// Publish delivers the event to every subscriber of its table. A write that
// does not complete within the bus timeout counts against the subscriber;
// reaching the failure threshold evicts it.
func (b *Bus) Publish(evt Event) {
	b.mu.RLock()
	var subs []chan<- Event
	for ch := range b.tables[evt.Table] {
		subs = append(subs, ch)
	}
	b.mu.RUnlock()

	for _, ch := range subs {
		if b.send(ch, evt) {
			continue
		}

		b.mu.Lock()
		b.failures[ch]++
		evict := b.failures[ch] >= b.failureThreshold
		if evict {
			b.unsubscribeLocked(evt.Table, ch)
		}
		b.mu.Unlock()

		if evict {
			log.Warn().
				Str("table", evt.Table).
				Msg("feed: evicted slow subscriber")
		}
	}
}

// send writes with a timeout. The channel may have been closed by a
// concurrent Unsubscribe; the recover turns that race into a plain failed
// delivery.
func (b *Bus) send(ch chan<- Event, evt Event) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	t := time.NewTimer(b.writeTimeout)
	defer t.Stop()

	select {
	case ch <- evt:
		return true
	case <-t.C:
		return false
	}
}
