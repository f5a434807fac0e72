package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"markethub/internal/domain"
	"markethub/internal/repository"
)

type mockBookingRepo struct {
	mock.Mock
}

func (m *mockBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	if args.Error(0) == nil {
		b.ID = 1
		b.Status = domain.BookingPending
	}
	return args.Error(0)
}

func (m *mockBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) ListByCustomer(ctx context.Context, customerID int64) ([]*domain.Booking, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) ListByProvider(ctx context.Context, providerID int64) ([]*domain.Booking, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) SlotTaken(ctx context.Context, serviceID int64, date time.Time, slot string) (bool, error) {
	args := m.Called(ctx, serviceID, date, slot)
	return args.Bool(0), args.Error(1)
}

func (m *mockBookingRepo) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) Rebook(ctx context.Context, serviceID int64, date time.Time, slot string) error {
	args := m.Called(ctx, serviceID, date, slot)
	return args.Error(0)
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

var day = time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)

func availableService() *domain.Service {
	return &domain.Service{
		ID:         3,
		ProviderID: 8,
		Price:      75,
		Availability: []domain.ServiceAvailability{
			{ServiceID: 3, Date: day, TimeSlots: []string{"09:00", "10:30"}},
		},
	}
}

func TestCreateBooking_Success(t *testing.T) {
	bookings := new(mockBookingRepo)
	services := new(mockServiceGetter)
	svc := NewService(bookings, services)

	services.On("GetByID", mock.Anything, int64(3)).Return(availableService(), nil)
	bookings.On("SlotTaken", mock.Anything, int64(3), day, "09:00").Return(false, nil)
	bookings.On("Rebook", mock.Anything, int64(3), day, "09:00").Return(nil)
	bookings.On("Create", mock.Anything, mock.AnythingOfType("*domain.Booking")).Return(nil)

	b, err := svc.Create(context.Background(), 2, CreateBookingRequest{ServiceID: 3, Date: day, TimeSlot: "09:00"})

	assert.NoError(t, err)
	assert.Equal(t, int64(8), b.ProviderID, "provider id is denormalized from the service")
	assert.Equal(t, 75.0, b.Total, "price snapshotted from the service")
	assert.Equal(t, domain.BookingPending, b.Status)
}

func TestCreateBooking_SlotOutsideAvailability(t *testing.T) {
	bookings := new(mockBookingRepo)
	services := new(mockServiceGetter)
	svc := NewService(bookings, services)

	services.On("GetByID", mock.Anything, int64(3)).Return(availableService(), nil)

	_, err := svc.Create(context.Background(), 2, CreateBookingRequest{ServiceID: 3, Date: day, TimeSlot: "23:00"})

	assert.ErrorIs(t, err, ErrSlotNotOffered)
}

func TestCreateBooking_SlotTaken(t *testing.T) {
	bookings := new(mockBookingRepo)
	services := new(mockServiceGetter)
	svc := NewService(bookings, services)

	services.On("GetByID", mock.Anything, int64(3)).Return(availableService(), nil)
	bookings.On("SlotTaken", mock.Anything, int64(3), day, "09:00").Return(true, nil)

	_, err := svc.Create(context.Background(), 2, CreateBookingRequest{ServiceID: 3, Date: day, TimeSlot: "09:00"})

	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestCreateBooking_RaceLoserGetsSlotTaken(t *testing.T) {
	bookings := new(mockBookingRepo)
	services := new(mockServiceGetter)
	svc := NewService(bookings, services)

	services.On("GetByID", mock.Anything, int64(3)).Return(availableService(), nil)
	bookings.On("SlotTaken", mock.Anything, int64(3), day, "09:00").Return(false, nil)
	bookings.On("Rebook", mock.Anything, int64(3), day, "09:00").Return(nil)
	// Concurrent winner hit the unique index first.
	bookings.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicate)

	_, err := svc.Create(context.Background(), 2, CreateBookingRequest{ServiceID: 3, Date: day, TimeSlot: "09:00"})

	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestUpdateStatus_ProviderConfirms(t *testing.T) {
	bookings := new(mockBookingRepo)
	svc := NewService(bookings, new(mockServiceGetter))

	b := &domain.Booking{ID: 1, CustomerID: 2, ProviderID: 8, Status: domain.BookingPending}
	bookings.On("GetByID", mock.Anything, int64(1)).Return(b, nil)
	bookings.On("UpdateStatus", mock.Anything, int64(1), domain.BookingConfirmed).
		Return(&domain.Booking{ID: 1, CustomerID: 2, ProviderID: 8, Status: domain.BookingConfirmed}, nil)

	updated, err := svc.UpdateStatus(context.Background(), 8, 1, UpdateStatusRequest{Status: "confirmed"})

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, updated.Status)
}

func TestUpdateStatus_CustomerCanOnlyCancel(t *testing.T) {
	bookings := new(mockBookingRepo)
	svc := NewService(bookings, new(mockServiceGetter))

	b := &domain.Booking{ID: 1, CustomerID: 2, ProviderID: 8, Status: domain.BookingConfirmed}
	bookings.On("GetByID", mock.Anything, int64(1)).Return(b, nil)

	_, err := svc.UpdateStatus(context.Background(), 2, 1, UpdateStatusRequest{Status: "completed"})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	bookings.On("UpdateStatus", mock.Anything, int64(1), domain.BookingCancelled).
		Return(&domain.Booking{ID: 1, CustomerID: 2, ProviderID: 8, Status: domain.BookingCancelled}, nil)

	updated, err := svc.UpdateStatus(context.Background(), 2, 1, UpdateStatusRequest{Status: "cancelled"})
	assert.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, updated.Status)
}

func TestUpdateStatus_CompletedIsTerminal(t *testing.T) {
	bookings := new(mockBookingRepo)
	svc := NewService(bookings, new(mockServiceGetter))

	b := &domain.Booking{ID: 1, CustomerID: 2, ProviderID: 8, Status: domain.BookingCompleted}
	bookings.On("GetByID", mock.Anything, int64(1)).Return(b, nil)

	_, err := svc.UpdateStatus(context.Background(), 8, 1, UpdateStatusRequest{Status: "cancelled"})

	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestGet_StrangerRejected(t *testing.T) {
	bookings := new(mockBookingRepo)
	svc := NewService(bookings, new(mockServiceGetter))

	b := &domain.Booking{ID: 1, CustomerID: 2, ProviderID: 8}
	bookings.On("GetByID", mock.Anything, int64(1)).Return(b, nil)

	_, err := svc.Get(context.Background(), 5, 1)

	assert.ErrorIs(t, err, ErrNotParticipant)
}
