package booking

import "errors"

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrServiceNotFound   = errors.New("service not found")
	ErrSlotNotOffered    = errors.New("slot outside published availability")
	ErrSlotTaken         = errors.New("slot already booked")
	ErrInvalidTransition = errors.New("illegal status transition")
	ErrNotParticipant    = errors.New("booking belongs to another account")
)
