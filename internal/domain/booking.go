package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID         int64         `json:"id"`
	CustomerID int64         `json:"customer_id"`
	ServiceID  int64         `json:"service_id"`
	Date       time.Time     `json:"date"`
	TimeSlot   string        `json:"time_slot"`
	Status     BookingStatus `json:"status"`
	Total      float64       `json:"total"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`

	// ProviderID is denormalized from the service row so booking events
	// can be scoped without another lookup.
	ProviderID int64 `json:"provider_id"`

	Customer *User    `json:"customer,omitempty"`
	Service  *Service `json:"service,omitempty"`
}

func (b Booking) RowID() int64 { return b.ID }
