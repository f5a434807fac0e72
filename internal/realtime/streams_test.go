package realtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"markethub/internal/domain"
	"markethub/internal/feed"
	"markethub/internal/session"
)

type mockOrderLister struct {
	mock.Mock
}

func (m *mockOrderLister) ListByCustomer(ctx context.Context, customerID int64) ([]*domain.Order, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]*domain.Order), args.Error(1)
}

func (m *mockOrderLister) ListBySeller(ctx context.Context, sellerID int64) ([]*domain.Order, error) {
	args := m.Called(ctx, sellerID)
	return args.Get(0).([]*domain.Order), args.Error(1)
}

func customerSession(userID int64) session.Session {
	return session.Session{ID: "s", UserID: userID, Role: domain.RoleCustomer}
}

func sellerOrder(id, customerID, sellerID int64) *domain.Order {
	return &domain.Order{
		ID:         id,
		CustomerID: customerID,
		Items: []domain.OrderItem{
			{ProductID: 1, Product: &domain.Product{ID: 1, SellerID: sellerID}},
		},
	}
}

func TestMatcher_ProductsApplyFilters(t *testing.T) {
	s := NewStreams(nil, nil, nil, nil, nil)

	min := 50.0
	match, err := s.Matcher(customerSession(1), feed.TableProducts, domain.SearchFilters{PriceMin: &min})
	require.NoError(t, err)

	assert.True(t, match(&domain.Product{ID: 1, Price: 80}))
	assert.False(t, match(&domain.Product{ID: 2, Price: 20}))
	assert.False(t, match(&domain.Service{ID: 3, Price: 80}), "wrong row type never matches")
}

func TestMatcher_OrdersScopedToParticipants(t *testing.T) {
	s := NewStreams(nil, nil, nil, nil, nil)
	order := sellerOrder(1, 10, 20)

	customer, err := s.Matcher(customerSession(10), feed.TableOrders, domain.SearchFilters{})
	require.NoError(t, err)
	assert.True(t, customer(order))

	retailer, err := s.Matcher(session.Session{UserID: 20, Role: domain.RoleRetailer}, feed.TableOrders, domain.SearchFilters{})
	require.NoError(t, err)
	assert.True(t, retailer(order))

	stranger, err := s.Matcher(customerSession(99), feed.TableOrders, domain.SearchFilters{})
	require.NoError(t, err)
	assert.False(t, stranger(order))

	// Selling is a retailer privilege; matching seller id alone is not
	// enough.
	notRetailer, err := s.Matcher(customerSession(20), feed.TableOrders, domain.SearchFilters{})
	require.NoError(t, err)
	assert.False(t, notRetailer(order))
}

func TestMatcher_BookingsScopedToParticipants(t *testing.T) {
	s := NewStreams(nil, nil, nil, nil, nil)
	booking := &domain.Booking{ID: 1, CustomerID: 10, ProviderID: 20}

	for _, userID := range []int64{10, 20} {
		match, err := s.Matcher(customerSession(userID), feed.TableBookings, domain.SearchFilters{})
		require.NoError(t, err)
		assert.True(t, match(booking))
	}

	stranger, err := s.Matcher(customerSession(99), feed.TableBookings, domain.SearchFilters{})
	require.NoError(t, err)
	assert.False(t, stranger(booking))
}

func TestMatcher_MessagesScopedToParticipants(t *testing.T) {
	s := NewStreams(nil, nil, nil, nil, nil)
	msg := &domain.Message{ID: 1, SenderID: 10, RecipientID: 20}

	for _, userID := range []int64{10, 20} {
		match, err := s.Matcher(customerSession(userID), feed.TableMessages, domain.SearchFilters{})
		require.NoError(t, err)
		assert.True(t, match(msg))
	}

	stranger, err := s.Matcher(customerSession(99), feed.TableMessages, domain.SearchFilters{})
	require.NoError(t, err)
	assert.False(t, stranger(msg))
}

func TestMatcher_UnknownTable(t *testing.T) {
	s := NewStreams(nil, nil, nil, nil, nil)

	_, err := s.Matcher(customerSession(1), "users", domain.SearchFilters{})

	assert.ErrorIs(t, err, ErrUnknownTable)
}

// A retailer who bought their own product appears on both sides of the
// order snapshot; the merge keeps one copy.
func TestSnapshot_RetailerOrdersDeduplicated(t *testing.T) {
	orders := new(mockOrderLister)
	s := NewStreams(nil, nil, orders, nil, nil)

	shared := sellerOrder(1, 20, 20)
	orders.On("ListByCustomer", mock.Anything, int64(20)).Return([]*domain.Order{shared, sellerOrder(2, 20, 99)}, nil)
	orders.On("ListBySeller", mock.Anything, int64(20)).Return([]*domain.Order{shared, sellerOrder(3, 50, 20)}, nil)

	rows, err := s.Snapshot(context.Background(), session.Session{UserID: 20, Role: domain.RoleRetailer}, feed.TableOrders, domain.SearchFilters{})

	require.NoError(t, err)
	require.Len(t, rows, 3)

	ids := make(map[int64]bool)
	for _, r := range rows {
		ids[r.RowID()] = true
	}
	assert.True(t, ids[1] && ids[2] && ids[3])
}

func TestSnapshot_CustomerOrdersSkipSellerSide(t *testing.T) {
	orders := new(mockOrderLister)
	s := NewStreams(nil, nil, orders, nil, nil)

	orders.On("ListByCustomer", mock.Anything, int64(10)).Return([]*domain.Order{sellerOrder(1, 10, 20)}, nil)

	rows, err := s.Snapshot(context.Background(), customerSession(10), feed.TableOrders, domain.SearchFilters{})

	require.NoError(t, err)
	assert.Len(t, rows, 1)
	orders.AssertNotCalled(t, "ListBySeller", mock.Anything, mock.Anything)
}
