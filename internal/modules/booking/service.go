package booking

import (
	"context"
	"errors"

	"markethub/internal/domain"
	"markethub/internal/repository"
)

type Service struct {
	bookings BookingRepositoryInterface
	services ServiceGetter
}

func NewService(bookings BookingRepositoryInterface, services ServiceGetter) *Service {
	return &Service{bookings: bookings, services: services}
}

var transitions = map[domain.BookingStatus][]domain.BookingStatus{
	domain.BookingPending:   {domain.BookingConfirmed, domain.BookingCancelled},
	domain.BookingConfirmed: {domain.BookingCompleted, domain.BookingCancelled},
}

func transitionAllowed(from, to domain.BookingStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Create books a slot. The slot must sit inside the service's published
// availability and not be held by an active booking; the unique index in
// the bookings table settles concurrent races.
func (s *Service) Create(ctx context.Context, customerID int64, req CreateBookingRequest) (*domain.Booking, error) {
	sv, err := s.services.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}

	if !sv.SlotOpen(req.Date, req.TimeSlot) {
		return nil, ErrSlotNotOffered
	}

	taken, err := s.bookings.SlotTaken(ctx, req.ServiceID, req.Date, req.TimeSlot)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlotTaken
	}

	// A cancelled booking may still hold the unique index entry.
	if err := s.bookings.Rebook(ctx, req.ServiceID, req.Date, req.TimeSlot); err != nil {
		return nil, err
	}

	b := &domain.Booking{
		CustomerID: customerID,
		ServiceID:  req.ServiceID,
		ProviderID: sv.ProviderID,
		Date:       req.Date,
		TimeSlot:   req.TimeSlot,
		Total:      sv.Price,
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrSlotTaken
		}
		return nil, err
	}
	return b, nil
}

func (s *Service) Get(ctx context.Context, userID int64, id int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if b.CustomerID != userID && b.ProviderID != userID {
		return nil, ErrNotParticipant
	}
	return b, nil
}

func (s *Service) ListForCustomer(ctx context.Context, customerID int64) ([]*domain.Booking, error) {
	return s.bookings.ListByCustomer(ctx, customerID)
}

func (s *Service) ListForProvider(ctx context.Context, providerID int64) ([]*domain.Booking, error) {
	return s.bookings.ListByProvider(ctx, providerID)
}

// UpdateStatus applies one transition. The provider drives confirmation
// and completion; the customer may cancel while the work hasn't happened.
func (s *Service) UpdateStatus(ctx context.Context, userID int64, id int64, req UpdateStatusRequest) (*domain.Booking, error) {
	to := domain.BookingStatus(req.Status)

	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	switch userID {
	case b.ProviderID:
		// provider side
	case b.CustomerID:
		if to != domain.BookingCancelled {
			return nil, ErrInvalidTransition
		}
	default:
		return nil, ErrNotParticipant
	}

	if !transitionAllowed(b.Status, to) {
		return nil, ErrInvalidTransition
	}
	return s.bookings.UpdateStatus(ctx, id, to)
}
