package domain

import "time"

type UserRole string

const (
	RoleCustomer        UserRole = "customer"
	RoleRetailer        UserRole = "retailer"
	RoleServiceProvider UserRole = "service-provider"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleCustomer, RoleRetailer, RoleServiceProvider:
		return true
	}
	return false
}

// Location is the city/area/address triple attached to users, listings
// and order deliveries.
type Location struct {
	City    string `json:"city"`
	Area    string `json:"area"`
	Address string `json:"address,omitempty"`
}

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         UserRole  `json:"role"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	Location     Location  `json:"location"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
