package catalog

import (
	"context"

	"markethub/internal/domain"
)

// ProductRepositoryInterface lists only the methods the catalog service uses.
type ProductRepositoryInterface interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, f domain.SearchFilters) ([]*domain.Product, error)
	ListBySeller(ctx context.Context, sellerID int64) ([]*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id int64) error
}

// ServiceRepositoryInterface lists only the methods the catalog service uses.
type ServiceRepositoryInterface interface {
	Create(ctx context.Context, s *domain.Service) error
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
	List(ctx context.Context, f domain.SearchFilters) ([]*domain.Service, error)
	ListByProvider(ctx context.Context, providerID int64) ([]*domain.Service, error)
	Update(ctx context.Context, s *domain.Service) error
	Delete(ctx context.Context, id int64) error
}

// ReviewRepositoryInterface loads reviews for detail pages.
type ReviewRepositoryInterface interface {
	ListByProduct(ctx context.Context, productID int64) ([]*domain.Review, error)
	ListByService(ctx context.Context, serviceID int64) ([]*domain.Review, error)
}
