package realtime

import (
	"markethub/internal/domain"
	"markethub/internal/feed"
)

// Client frame actions.
const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
)

// Server frame types.
const (
	FrameSnapshot = "snapshot"
	FrameChange   = "change"
	FrameError    = "error"
	FrameClosed   = "closed"
)

// ClientFrame is one inbound control message. SubID is chosen by the
// client and scopes every frame the subscription produces. Frames arrive
// outside gin, so validation tags are checked explicitly by the gateway.
type ClientFrame struct {
	Action  string                `json:"action" validate:"required,oneof=subscribe unsubscribe"`
	SubID   string                `json:"sub_id" validate:"required"`
	Table   string                `json:"table"`
	Filters *domain.SearchFilters `json:"filters,omitempty"`
}

// ServerFrame is one outbound message. A subscription starts with a
// snapshot frame carrying the filtered rows, then change frames carrying
// deltas already translated to the subscriber's view.
type ServerFrame struct {
	Type    string      `json:"type"`
	SubID   string      `json:"sub_id,omitempty"`
	Table   string      `json:"table,omitempty"`
	Rows    []feed.Row  `json:"rows,omitempty"`
	Event   *feed.Event `json:"event,omitempty"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
}
