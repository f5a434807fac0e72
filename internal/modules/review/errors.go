package review

import "errors"

var (
	ErrInvalidTarget   = errors.New("review must target exactly one listing")
	ErrTargetNotFound  = errors.New("review target not found")
	ErrAlreadyReviewed = errors.New("listing already reviewed by this user")
)
