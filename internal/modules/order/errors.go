package order

import "errors"

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrProductNotFound    = errors.New("ordered product not found")
	ErrVariantUnavailable = errors.New("requested variant not offered")
	ErrInsufficientStock  = errors.New("not enough stock")
	ErrInvalidTransition  = errors.New("illegal status transition")
	ErrNotParticipant     = errors.New("order belongs to another account")
)
