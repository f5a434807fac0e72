package livesync

import "markethub/internal/feed"

// View is the server-side half of a live subscription: a filter predicate
// plus the set of row ids currently inside it. Raw table deltas go in,
// and the op the subscriber must apply comes out. An update that moves a
// row into the filter becomes an insert, one that moves it out becomes a
// delete.
//
// A View is owned by a single subscription goroutine and is not safe for
// concurrent use.
type View struct {
	match   func(feed.Row) bool
	members map[int64]struct{}
}

// NewView builds a view over the given predicate. A nil predicate matches
// every row.
func NewView(match func(feed.Row) bool) *View {
	if match == nil {
		match = func(feed.Row) bool { return true }
	}
	return &View{match: match, members: make(map[int64]struct{})}
}

// Seed filters the initial snapshot and records the surviving ids.
func (v *View) Seed(rows []feed.Row) []feed.Row {
	out := make([]feed.Row, 0, len(rows))
	for _, r := range rows {
		if !v.match(r) {
			continue
		}
		v.members[r.RowID()] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Apply translates a raw delta into the event to forward, if any.
func (v *View) Apply(evt feed.Event) (feed.Event, bool) {
	_, in := v.members[evt.ID]

	switch evt.Type {
	case feed.EventInsert, feed.EventUpdate:
		matches := evt.Row != nil && v.match(evt.Row)
		switch {
		case in && matches:
			evt.Type = feed.EventUpdate
			return evt, true
		case in && !matches:
			delete(v.members, evt.ID)
			evt.Type = feed.EventDelete
			evt.Row = nil
			return evt, true
		case !in && matches:
			v.members[evt.ID] = struct{}{}
			evt.Type = feed.EventInsert
			return evt, true
		}

	case feed.EventDelete:
		if in {
			delete(v.members, evt.ID)
			return evt, true
		}
	}
	return feed.Event{}, false
}

// Len reports how many rows are currently inside the view.
func (v *View) Len() int { return len(v.members) }
