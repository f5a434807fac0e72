package review

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"markethub/internal/domain"
	"markethub/internal/repository"
)

type mockReviewRepo struct {
	mock.Mock
}

func (m *mockReviewRepo) Create(ctx context.Context, rv *domain.Review) error {
	args := m.Called(ctx, rv)
	if args.Error(0) == nil {
		rv.ID = 1
	}
	return args.Error(0)
}

func (m *mockReviewRepo) ListByProduct(ctx context.Context, productID int64) ([]*domain.Review, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Review), args.Error(1)
}

func (m *mockReviewRepo) ListByService(ctx context.Context, serviceID int64) ([]*domain.Review, error) {
	args := m.Called(ctx, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Review), args.Error(1)
}

type mockProductGetter struct {
	mock.Mock
}

func (m *mockProductGetter) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

type mockServiceGetter struct {
	mock.Mock
}

func (m *mockServiceGetter) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Service), args.Error(1)
}

func ptr(v int64) *int64 { return &v }

func TestCreateReview_ProductTarget(t *testing.T) {
	reviews := new(mockReviewRepo)
	products := new(mockProductGetter)
	svc := NewService(reviews, products, new(mockServiceGetter))

	products.On("GetByID", mock.Anything, int64(5)).Return(&domain.Product{ID: 5}, nil)
	reviews.On("Create", mock.Anything, mock.AnythingOfType("*domain.Review")).Return(nil)

	rv, err := svc.Create(context.Background(), 2, CreateReviewRequest{ProductID: ptr(5), Rating: 4, Comment: "solid"})

	assert.NoError(t, err)
	assert.Equal(t, int64(2), rv.UserID)
	assert.NotNil(t, rv.ProductID)
	assert.Nil(t, rv.ServiceID)
}

func TestCreateReview_RejectsBothTargets(t *testing.T) {
	svc := NewService(new(mockReviewRepo), new(mockProductGetter), new(mockServiceGetter))

	_, err := svc.Create(context.Background(), 2, CreateReviewRequest{ProductID: ptr(5), ServiceID: ptr(6), Rating: 4})

	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestCreateReview_RejectsNoTarget(t *testing.T) {
	svc := NewService(new(mockReviewRepo), new(mockProductGetter), new(mockServiceGetter))

	_, err := svc.Create(context.Background(), 2, CreateReviewRequest{Rating: 4})

	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestCreateReview_MissingTarget(t *testing.T) {
	reviews := new(mockReviewRepo)
	services := new(mockServiceGetter)
	svc := NewService(reviews, new(mockProductGetter), services)

	services.On("GetByID", mock.Anything, int64(9)).Return(nil, repository.ErrNotFound)

	_, err := svc.Create(context.Background(), 2, CreateReviewRequest{ServiceID: ptr(9), Rating: 5})

	assert.ErrorIs(t, err, ErrTargetNotFound)
}

func TestCreateReview_DuplicatePerUser(t *testing.T) {
	reviews := new(mockReviewRepo)
	products := new(mockProductGetter)
	svc := NewService(reviews, products, new(mockServiceGetter))

	products.On("GetByID", mock.Anything, int64(5)).Return(&domain.Product{ID: 5}, nil)
	reviews.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicate)

	_, err := svc.Create(context.Background(), 2, CreateReviewRequest{ProductID: ptr(5), Rating: 4})

	assert.ErrorIs(t, err, ErrAlreadyReviewed)
}
