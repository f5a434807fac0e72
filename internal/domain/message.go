package domain

import "time"

type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
)

// Message is a flat direct message row. ClientID is the caller-generated
// correlation id: it makes sends idempotent and lets a subscriber replace
// its optimistic pending row when the change-feed echo arrives.
type Message struct {
	ID          int64       `json:"id"`
	ClientID    string      `json:"client_id"`
	SenderID    int64       `json:"sender_id"`
	RecipientID int64       `json:"recipient_id"`
	Content     string      `json:"content"`
	Type        MessageType `json:"type"`
	ImageURL    string      `json:"image_url,omitempty"`
	Read        bool        `json:"read"`
	CreatedAt   time.Time   `json:"created_at"`

	Sender    *User `json:"sender,omitempty"`
	Recipient *User `json:"recipient,omitempty"`
}

func (m Message) RowID() int64 { return m.ID }

// Conversation is derived, never stored: a user's messages grouped by the
// counterpart participant.
type Conversation struct {
	CounterpartID int64    `json:"counterpart_id"`
	Counterpart   *User    `json:"counterpart,omitempty"`
	LastMessage   *Message `json:"last_message,omitempty"`
	UnreadCount   int      `json:"unread_count"`
}
