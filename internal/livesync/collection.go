package livesync

import (
	"sync"

	"markethub/internal/feed"
)

// Collection mirrors one remote list: a snapshot seeded by the initial
// fetch, then deltas replayed with id-keyed upsert/delete semantics. It also
// carries optimistic pending rows keyed by correlation id, appended before
// the write is confirmed and replaced by the matching feed echo.
//
// Insert placement follows the source list convention: message lists append
// new rows at the end, every other list prepends.
type Collection struct {
	mu            sync.Mutex
	loading       bool
	appendInserts bool
	order         []int64
	rows          map[int64]feed.Row
	pending       []pendingRow
}

type pendingRow struct {
	clientID string
	row      feed.Row
}

func NewCollection(appendInserts bool) *Collection {
	return &Collection{
		loading:       true,
		appendInserts: appendInserts,
		rows:          make(map[int64]feed.Row),
	}
}

// Loading is true until the first snapshot arrives.
func (c *Collection) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// SetSnapshot replaces the committed rows and leaves the loading state.
// Pending rows survive a snapshot: they belong to writes still in flight.
func (c *Collection) SetSnapshot(rows []feed.Row) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order = c.order[:0]
	c.rows = make(map[int64]feed.Row, len(rows))
	for _, r := range rows {
		id := r.RowID()
		if _, ok := c.rows[id]; ok {
			continue
		}
		c.rows[id] = r
		c.order = append(c.order, id)
	}
	c.loading = false
}

// Apply replays one delta. Inserts and updates both upsert by id, so the
// outcome of a delta sequence does not depend on the relative order of
// events for independent ids. An event carrying a known correlation id
// drops the matching pending row first: the echo replaces the optimistic
// copy instead of duplicating it.
func (c *Collection) Apply(evt feed.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch evt.Type {
	case feed.EventInsert, feed.EventUpdate:
		if evt.Row == nil {
			return
		}
		if evt.ClientID != "" {
			c.dropPendingLocked(evt.ClientID)
		}
		id := evt.Row.RowID()
		if _, ok := c.rows[id]; ok {
			c.rows[id] = evt.Row
			return
		}
		c.rows[id] = evt.Row
		if c.appendInserts {
			c.order = append(c.order, id)
		} else {
			c.order = append([]int64{id}, c.order...)
		}

	case feed.EventDelete:
		if _, ok := c.rows[evt.ID]; !ok {
			return
		}
		delete(c.rows, evt.ID)
		for i, id := range c.order {
			if id == evt.ID {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
	}
}

// AddPending appends an optimistic row before its write is issued.
func (c *Collection) AddPending(clientID string, row feed.Row) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append(c.pending, pendingRow{clientID: clientID, row: row})
}

// DropPending rolls an optimistic row back after a failed write. No other
// row is touched.
func (c *Collection) DropPending(clientID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropPendingLocked(clientID)
}

func (c *Collection) dropPendingLocked(clientID string) {
	for i, p := range c.pending {
		if p.clientID == clientID {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return
		}
	}
}

// Rows returns the committed rows in list order followed by any pending
// rows, which always render after confirmed state.
func (c *Collection) Rows() []feed.Row {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]feed.Row, 0, len(c.order)+len(c.pending))
	for _, id := range c.order {
		out = append(out, c.rows[id])
	}
	for _, p := range c.pending {
		out = append(out, p.row)
	}
	return out
}

func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order) + len(c.pending)
}

// PendingCount reports how many optimistic rows are still unconfirmed.
func (c *Collection) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
