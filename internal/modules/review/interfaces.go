package review

import (
	"context"

	"markethub/internal/domain"
)

// ReviewRepositoryInterface lists only the methods the review service uses.
type ReviewRepositoryInterface interface {
	Create(ctx context.Context, rv *domain.Review) error
	ListByProduct(ctx context.Context, productID int64) ([]*domain.Review, error)
	ListByService(ctx context.Context, serviceID int64) ([]*domain.Review, error)
}

// ProductGetter verifies the review target exists.
type ProductGetter interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
}

type ServiceGetter interface {
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
}
