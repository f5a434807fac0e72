package booking

import "time"

type CreateBookingRequest struct {
	ServiceID int64     `json:"service_id" binding:"required"`
	Date      time.Time `json:"date" binding:"required"`
	TimeSlot  string    `json:"time_slot" binding:"required"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
