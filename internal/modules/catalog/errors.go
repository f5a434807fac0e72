package catalog

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrServiceNotFound = errors.New("service not found")
	ErrNotOwner        = errors.New("listing belongs to another account")
)
