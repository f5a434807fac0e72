package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"markethub/internal/domain"
	"markethub/internal/repository"
)

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	args := m.Called(ctx, o)
	if args.Error(0) == nil {
		o.ID = 1
		o.Status = domain.OrderPending
	}
	return args.Error(0)
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepo) ListByCustomer(ctx context.Context, customerID int64) ([]*domain.Order, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Order), args.Error(1)
}

func (m *mockOrderRepo) ListBySeller(ctx context.Context, sellerID int64) ([]*domain.Order, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Order), args.Error(1)
}

func (m *mockOrderRepo) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
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

func sellerOrder(customerID, sellerID int64, status domain.OrderStatus) *domain.Order {
	return &domain.Order{
		ID:         1,
		CustomerID: customerID,
		Status:     status,
		Items: []domain.OrderItem{
			{ProductID: 10, Quantity: 1, Product: &domain.Product{ID: 10, SellerID: sellerID}},
		},
	}
}

func TestCreateOrder_Success(t *testing.T) {
	orders := new(mockOrderRepo)
	products := new(mockProductGetter)
	svc := NewService(orders, products)

	products.On("GetByID", mock.Anything, int64(10)).Return(&domain.Product{
		ID: 10, Colors: []string{"red"}, Sizes: []string{"M"}, Stock: 5,
	}, nil)
	orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)

	o, err := svc.Create(context.Background(), 2, CreateOrderRequest{
		Items: []OrderItemInput{{ProductID: 10, Quantity: 2, Color: "red", Size: "M"}},
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.OrderPending, o.Status)
	assert.Equal(t, int64(2), o.CustomerID)
}

func TestCreateOrder_UnknownVariant(t *testing.T) {
	orders := new(mockOrderRepo)
	products := new(mockProductGetter)
	svc := NewService(orders, products)

	products.On("GetByID", mock.Anything, int64(10)).Return(&domain.Product{
		ID: 10, Colors: []string{"red"},
	}, nil)

	_, err := svc.Create(context.Background(), 2, CreateOrderRequest{
		Items: []OrderItemInput{{ProductID: 10, Quantity: 1, Color: "green"}},
	})

	assert.ErrorIs(t, err, ErrVariantUnavailable)
}

func TestCreateOrder_EmptyVariantAlwaysAllowed(t *testing.T) {
	orders := new(mockOrderRepo)
	products := new(mockProductGetter)
	svc := NewService(orders, products)

	products.On("GetByID", mock.Anything, int64(10)).Return(&domain.Product{
		ID: 10, Colors: []string{"red"}, Sizes: []string{"M"},
	}, nil)
	orders.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Create(context.Background(), 2, CreateOrderRequest{
		Items: []OrderItemInput{{ProductID: 10, Quantity: 1}},
	})

	assert.NoError(t, err)
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	orders := new(mockOrderRepo)
	products := new(mockProductGetter)
	svc := NewService(orders, products)

	products.On("GetByID", mock.Anything, int64(10)).Return(&domain.Product{ID: 10}, nil)
	orders.On("Create", mock.Anything, mock.Anything).Return(repository.ErrInsufficientStock)

	_, err := svc.Create(context.Background(), 2, CreateOrderRequest{
		Items: []OrderItemInput{{ProductID: 10, Quantity: 100}},
	})

	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestUpdateStatus_RetailerAdvances(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := NewService(orders, new(mockProductGetter))

	o := sellerOrder(2, 7, domain.OrderPending)
	orders.On("GetByID", mock.Anything, int64(1)).Return(o, nil)
	orders.On("UpdateStatus", mock.Anything, int64(1), domain.OrderConfirmed).
		Return(sellerOrder(2, 7, domain.OrderConfirmed), nil)

	updated, err := svc.UpdateStatus(context.Background(), 7, domain.RoleRetailer, 1, UpdateStatusRequest{Status: "confirmed"})

	assert.NoError(t, err)
	assert.Equal(t, domain.OrderConfirmed, updated.Status)
}

func TestUpdateStatus_IllegalJump(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := NewService(orders, new(mockProductGetter))

	orders.On("GetByID", mock.Anything, int64(1)).Return(sellerOrder(2, 7, domain.OrderPending), nil)

	_, err := svc.UpdateStatus(context.Background(), 7, domain.RoleRetailer, 1, UpdateStatusRequest{Status: "delivered"})

	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateStatus_CustomerCanOnlyCancelPending(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := NewService(orders, new(mockProductGetter))

	orders.On("GetByID", mock.Anything, int64(1)).Return(sellerOrder(2, 7, domain.OrderPending), nil)
	orders.On("UpdateStatus", mock.Anything, int64(1), domain.OrderCancelled).
		Return(sellerOrder(2, 7, domain.OrderCancelled), nil)

	updated, err := svc.UpdateStatus(context.Background(), 2, domain.RoleCustomer, 1, UpdateStatusRequest{Status: "cancelled"})
	assert.NoError(t, err)
	assert.Equal(t, domain.OrderCancelled, updated.Status)
}

func TestUpdateStatus_CustomerCannotConfirm(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := NewService(orders, new(mockProductGetter))

	orders.On("GetByID", mock.Anything, int64(1)).Return(sellerOrder(2, 7, domain.OrderPending), nil)

	_, err := svc.UpdateStatus(context.Background(), 2, domain.RoleCustomer, 1, UpdateStatusRequest{Status: "confirmed"})

	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateStatus_CustomerCannotCancelShipped(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := NewService(orders, new(mockProductGetter))

	orders.On("GetByID", mock.Anything, int64(1)).Return(sellerOrder(2, 7, domain.OrderShipped), nil)

	_, err := svc.UpdateStatus(context.Background(), 2, domain.RoleCustomer, 1, UpdateStatusRequest{Status: "cancelled"})

	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateStatus_StrangerRejected(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := NewService(orders, new(mockProductGetter))

	orders.On("GetByID", mock.Anything, int64(1)).Return(sellerOrder(2, 7, domain.OrderPending), nil)

	_, err := svc.UpdateStatus(context.Background(), 99, domain.RoleRetailer, 1, UpdateStatusRequest{Status: "confirmed"})

	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestGet_ParticipantsOnly(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := NewService(orders, new(mockProductGetter))

	o := sellerOrder(2, 7, domain.OrderPending)
	orders.On("GetByID", mock.Anything, int64(1)).Return(o, nil)

	_, err := svc.Get(context.Background(), 2, domain.RoleCustomer, 1)
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), 7, domain.RoleRetailer, 1)
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), 5, domain.RoleCustomer, 1)
	assert.ErrorIs(t, err, ErrNotParticipant)
}
