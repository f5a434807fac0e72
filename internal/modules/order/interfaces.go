package order

import (
	"context"

	"markethub/internal/domain"
)

// OrderRepositoryInterface lists only the methods the order service uses.
type OrderRepositoryInterface interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]*domain.Order, error)
	ListBySeller(ctx context.Context, sellerID int64) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error)
}

// ProductGetter validates ordered variants before the write.
type ProductGetter interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
}
