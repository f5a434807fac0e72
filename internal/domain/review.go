package domain

import "time"

// Review targets exactly one of ProductID or ServiceID.
type Review struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ProductID *int64    `json:"product_id,omitempty"`
	ServiceID *int64    `json:"service_id,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`

	User *User `json:"user,omitempty"`
}
