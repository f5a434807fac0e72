package review

import (
	"context"
	"errors"

	"markethub/internal/domain"
	"markethub/internal/repository"
)

type Service struct {
	reviews  ReviewRepositoryInterface
	products ProductGetter
	services ServiceGetter
}

func NewService(reviews ReviewRepositoryInterface, products ProductGetter, services ServiceGetter) *Service {
	return &Service{
		reviews:  reviews,
		products: products,
		services: services,
	}
}

// Create stores a review against exactly one listing. The repository
// recomputes the listing's rating aggregate in the same transaction.
func (s *Service) Create(ctx context.Context, userID int64, req CreateReviewRequest) (*domain.Review, error) {
	if (req.ProductID == nil) == (req.ServiceID == nil) {
		return nil, ErrInvalidTarget
	}

	if req.ProductID != nil {
		if _, err := s.products.GetByID(ctx, *req.ProductID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrTargetNotFound
			}
			return nil, err
		}
	} else {
		if _, err := s.services.GetByID(ctx, *req.ServiceID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrTargetNotFound
			}
			return nil, err
		}
	}

	rv := &domain.Review{
		UserID:    userID,
		ProductID: req.ProductID,
		ServiceID: req.ServiceID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := s.reviews.Create(ctx, rv); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyReviewed
		}
		return nil, err
	}
	return rv, nil
}

func (s *Service) ListByProduct(ctx context.Context, productID int64) ([]*domain.Review, error) {
	return s.reviews.ListByProduct(ctx, productID)
}

func (s *Service) ListByService(ctx context.Context, serviceID int64) ([]*domain.Review, error) {
	return s.reviews.ListByService(ctx, serviceID)
}
