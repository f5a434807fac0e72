package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"markethub/internal/domain"
	"markethub/internal/feed"
)

type BookingRepository struct {
	db  *gorm.DB
	bus *feed.Bus
}

func NewBookingRepository(db *gorm.DB, bus *feed.Bus) *BookingRepository {
	return &BookingRepository{db: db, bus: bus}
}

// The composite unique index is the last line of defense against double
// booking: two concurrent requests for the same slot race to the insert and
// the loser gets a constraint violation. Cancelled bookings keep their row,
// so a freed slot is reopened by deleting the index entry via status filter
// at read time only; rebooking a cancelled slot goes through Rebook.
type bookingModel struct {
	ID         int64     `gorm:"column:id;primaryKey"`
	CustomerID int64     `gorm:"column:customer_id;index"`
	ServiceID  int64     `gorm:"column:service_id;uniqueIndex:idx_no_double_booking"`
	ProviderID int64     `gorm:"column:provider_id;index"`
	Date       time.Time `gorm:"column:date;uniqueIndex:idx_no_double_booking"`
	TimeSlot   string    `gorm:"column:time_slot;uniqueIndex:idx_no_double_booking"`
	Status     string    `gorm:"column:status"`
	Total      float64   `gorm:"column:total"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (bookingModel) TableName() string { return "bookings" }

func toDomainBooking(m bookingModel) *domain.Booking {
	return &domain.Booking{
		ID:         m.ID,
		CustomerID: m.CustomerID,
		ServiceID:  m.ServiceID,
		ProviderID: m.ProviderID,
		Date:       m.Date,
		TimeSlot:   m.TimeSlot,
		Status:     domain.BookingStatus(m.Status),
		Total:      m.Total,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	m := bookingModel{
		CustomerID: b.CustomerID,
		ServiceID:  b.ServiceID,
		ProviderID: b.ProviderID,
		Date:       b.Date,
		TimeSlot:   b.TimeSlot,
		Status:     string(domain.BookingPending),
		Total:      b.Total,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return normalize(err)
	}
	*b = *toDomainBooking(m)

	r.attachService(ctx, b)
	r.bus.Publish(feed.Event{Table: feed.TableBookings, Type: feed.EventInsert, ID: b.ID, Row: b})
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, normalize(err)
	}
	b := toDomainBooking(m)
	r.attachService(ctx, b)
	return b, nil
}

func (r *BookingRepository) ListByCustomer(ctx context.Context, customerID int64) ([]*domain.Booking, error) {
	return r.list(ctx, "customer_id = ?", customerID)
}

func (r *BookingRepository) ListByProvider(ctx context.Context, providerID int64) ([]*domain.Booking, error) {
	return r.list(ctx, "provider_id = ?", providerID)
}

func (r *BookingRepository) list(ctx context.Context, cond string, id int64) ([]*domain.Booking, error) {
	var models []bookingModel
	err := r.db.WithContext(ctx).
		Where(cond, id).
		Order("date ASC, time_slot ASC").
		Find(&models).Error
	if err != nil {
		return nil, normalize(err)
	}

	out := make([]*domain.Booking, 0, len(models))
	for _, m := range models {
		b := toDomainBooking(m)
		r.attachService(ctx, b)
		out = append(out, b)
	}
	return out, nil
}

// SlotTaken reports whether an active booking already holds the slot.
func (r *BookingRepository) SlotTaken(ctx context.Context, serviceID int64, date time.Time, slot string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("service_id = ? AND date = ? AND time_slot = ? AND status != ?",
			serviceID, date, slot, string(domain.BookingCancelled)).
		Count(&cnt).Error
	if err != nil {
		return false, normalize(err)
	}
	return cnt > 0, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error) {
	now := time.Now()
	tx := r.db.WithContext(ctx).Model(&bookingModel{}).Where("id = ?", id).Updates(map[string]any{
		"status":     string(status),
		"updated_at": now,
	})
	if tx.Error != nil {
		return nil, normalize(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	b, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r.bus.Publish(feed.Event{Table: feed.TableBookings, Type: feed.EventUpdate, ID: b.ID, Row: b})
	return b, nil
}

// Rebook frees a cancelled row holding the slot so the unique index does
// not block a fresh booking, then deletes it.
func (r *BookingRepository) Rebook(ctx context.Context, serviceID int64, date time.Time, slot string) error {
	err := r.db.WithContext(ctx).
		Where("service_id = ? AND date = ? AND time_slot = ? AND status = ?",
			serviceID, date, slot, string(domain.BookingCancelled)).
		Delete(&bookingModel{}).Error
	return normalize(err)
}

func (r *BookingRepository) attachService(ctx context.Context, b *domain.Booking) {
	var m serviceModel
	if err := r.db.WithContext(ctx).First(&m, b.ServiceID).Error; err == nil {
		b.Service = toDomainService(m)
	}
}
