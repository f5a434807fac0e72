package domain

import "time"

// Service is a bookable offering: like a product, but with a duration and
// published availability windows instead of stock and variants.
type Service struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Duration    int       `json:"duration"` // minutes
	Category    string    `json:"category"`
	ProviderID  int64     `json:"provider_id"`
	Rating      float64   `json:"rating"`
	ReviewCount int       `json:"review_count"`
	Location    Location  `json:"location"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Provider     *User                 `json:"provider,omitempty"`
	Availability []ServiceAvailability `json:"availability,omitempty"`
	Reviews      []Review              `json:"reviews,omitempty"`
}

func (s Service) RowID() int64 { return s.ID }

// ServiceAvailability is one published window: a calendar day plus the
// bookable time slots within it.
type ServiceAvailability struct {
	ID        int64     `json:"id"`
	ServiceID int64     `json:"service_id"`
	Date      time.Time `json:"date"`
	TimeSlots []string  `json:"time_slots"`
}

// SlotOpen reports whether the given day and slot is inside one of the
// published availability windows.
func (s *Service) SlotOpen(date time.Time, slot string) bool {
	for _, w := range s.Availability {
		if !sameDay(w.Date, date) {
			continue
		}
		for _, t := range w.TimeSlots {
			if t == slot {
				return true
			}
		}
	}
	return false
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
