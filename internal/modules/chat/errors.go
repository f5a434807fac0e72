package chat

import "errors"

var (
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrSelfMessage       = errors.New("cannot message yourself")
)
