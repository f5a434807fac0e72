package booking

import (
	"context"
	"time"

	"markethub/internal/domain"
)

// BookingRepositoryInterface lists only the methods the booking service uses.
type BookingRepositoryInterface interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]*domain.Booking, error)
	ListByProvider(ctx context.Context, providerID int64) ([]*domain.Booking, error)
	SlotTaken(ctx context.Context, serviceID int64, date time.Time, slot string) (bool, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error)
	Rebook(ctx context.Context, serviceID int64, date time.Time, slot string) error
}

// ServiceGetter loads the service with its availability windows.
type ServiceGetter interface {
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
}
