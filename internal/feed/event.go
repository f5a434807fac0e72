package feed

type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
)

// Tables rows are streamed from. Users and reviews are not streamed
// directly; review writes surface as product/service update events.
const (
	TableProducts = "products"
	TableServices = "services"
	TableOrders   = "orders"
	TableBookings = "bookings"
	TableMessages = "messages"
)

// Row is any entity that can ride the change feed.
type Row interface {
	RowID() int64
}

// Event is one row-level delta. Row carries the after-image for inserts and
// updates and is nil for deletes; ID is always set. ClientID echoes the
// correlation id of the write that produced the event, when there was one.
type Event struct {
	Table    string    `json:"table"`
	Type     EventType `json:"type"`
	ID       int64     `json:"id"`
	ClientID string    `json:"client_id,omitempty"`
	Row      Row       `json:"row,omitempty"`
}
