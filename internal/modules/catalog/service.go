package catalog

import (
	"context"
	"errors"

	"markethub/internal/domain"
	"markethub/internal/repository"
)

type Service struct {
	products ProductRepositoryInterface
	services ServiceRepositoryInterface
	reviews  ReviewRepositoryInterface
}

func NewService(
	products ProductRepositoryInterface,
	services ServiceRepositoryInterface,
	reviews ReviewRepositoryInterface,
) *Service {
	return &Service{
		products: products,
		services: services,
		reviews:  reviews,
	}
}

func (s *Service) ListProducts(ctx context.Context, f domain.SearchFilters) ([]*domain.Product, error) {
	return s.products.List(ctx, f)
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if reviews, err := s.reviews.ListByProduct(ctx, id); err == nil {
		p.Reviews = make([]domain.Review, 0, len(reviews))
		for _, rv := range reviews {
			p.Reviews = append(p.Reviews, *rv)
		}
	}
	return p, nil
}

func (s *Service) CreateProduct(ctx context.Context, sellerID int64, req CreateProductRequest) (*domain.Product, error) {
	p := &domain.Product{
		Name:           req.Name,
		Description:    req.Description,
		Price:          req.Price,
		Images:         req.Images,
		Category:       req.Category,
		Colors:         req.Colors,
		Sizes:          req.Sizes,
		Stock:          req.Stock,
		SellerID:       sellerID,
		DeliveryTime:   req.DeliveryTime,
		PaymentOptions: req.PaymentOptions,
		Location:       req.Location,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) UpdateProduct(ctx context.Context, sellerID, id int64, req UpdateProductRequest) (*domain.Product, error) {
	p, err := s.ownedProduct(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}

	p.Name = req.Name
	p.Description = req.Description
	p.Price = req.Price
	p.Images = req.Images
	p.Category = req.Category
	p.Colors = req.Colors
	p.Sizes = req.Sizes
	p.Stock = req.Stock
	p.DeliveryTime = req.DeliveryTime
	p.PaymentOptions = req.PaymentOptions
	p.Promoted = req.Promoted
	p.Location = req.Location

	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) DeleteProduct(ctx context.Context, sellerID, id int64) error {
	if _, err := s.ownedProduct(ctx, sellerID, id); err != nil {
		return err
	}
	return s.products.Delete(ctx, id)
}

func (s *Service) MyProducts(ctx context.Context, sellerID int64) ([]*domain.Product, error) {
	return s.products.ListBySeller(ctx, sellerID)
}

func (s *Service) ListServices(ctx context.Context, f domain.SearchFilters) ([]*domain.Service, error) {
	return s.services.List(ctx, f)
}

func (s *Service) GetService(ctx context.Context, id int64) (*domain.Service, error) {
	sv, err := s.services.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}

	if reviews, err := s.reviews.ListByService(ctx, id); err == nil {
		sv.Reviews = make([]domain.Review, 0, len(reviews))
		for _, rv := range reviews {
			sv.Reviews = append(sv.Reviews, *rv)
		}
	}
	return sv, nil
}

func (s *Service) CreateService(ctx context.Context, providerID int64, req CreateServiceRequest) (*domain.Service, error) {
	sv := &domain.Service{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Duration:     req.Duration,
		Category:     req.Category,
		ProviderID:   providerID,
		Location:     req.Location,
		Availability: toAvailability(0, req.Availability),
	}
	if err := s.services.Create(ctx, sv); err != nil {
		return nil, err
	}
	return sv, nil
}

func (s *Service) UpdateService(ctx context.Context, providerID, id int64, req UpdateServiceRequest) (*domain.Service, error) {
	sv, err := s.ownedService(ctx, providerID, id)
	if err != nil {
		return nil, err
	}

	sv.Name = req.Name
	sv.Description = req.Description
	sv.Price = req.Price
	sv.Duration = req.Duration
	sv.Category = req.Category
	sv.Location = req.Location
	sv.Availability = toAvailability(id, req.Availability)

	if err := s.services.Update(ctx, sv); err != nil {
		return nil, err
	}
	return sv, nil
}

func (s *Service) DeleteService(ctx context.Context, providerID, id int64) error {
	if _, err := s.ownedService(ctx, providerID, id); err != nil {
		return err
	}
	return s.services.Delete(ctx, id)
}

func (s *Service) MyServices(ctx context.Context, providerID int64) ([]*domain.Service, error) {
	return s.services.ListByProvider(ctx, providerID)
}

func (s *Service) ownedProduct(ctx context.Context, sellerID, id int64) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if p.SellerID != sellerID {
		return nil, ErrNotOwner
	}
	return p, nil
}

func (s *Service) ownedService(ctx context.Context, providerID, id int64) (*domain.Service, error) {
	sv, err := s.services.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	if sv.ProviderID != providerID {
		return nil, ErrNotOwner
	}
	return sv, nil
}

func toAvailability(serviceID int64, in []AvailabilityInput) []domain.ServiceAvailability {
	out := make([]domain.ServiceAvailability, 0, len(in))
	for _, w := range in {
		out = append(out, domain.ServiceAvailability{
			ServiceID: serviceID,
			Date:      w.Date,
			TimeSlots: w.TimeSlots,
		})
	}
	return out
}
