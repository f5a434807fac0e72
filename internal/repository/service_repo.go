package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"markethub/internal/domain"
	"markethub/internal/feed"
)

type ServiceRepository struct {
	db  *gorm.DB
	bus *feed.Bus
}

func NewServiceRepository(db *gorm.DB, bus *feed.Bus) *ServiceRepository {
	return &ServiceRepository{db: db, bus: bus}
}

type serviceModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	Name        string    `gorm:"column:name"`
	Description string    `gorm:"column:description"`
	Price       float64   `gorm:"column:price"`
	Duration    int       `gorm:"column:duration"`
	Category    string    `gorm:"column:category;index"`
	ProviderID  int64     `gorm:"column:provider_id;index"`
	Rating      float64   `gorm:"column:rating"`
	ReviewCount int       `gorm:"column:review_count"`
	City        string    `gorm:"column:location_city"`
	Area        string    `gorm:"column:location_area"`
	Address     string    `gorm:"column:location_address"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (serviceModel) TableName() string { return "services" }

type availabilityModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	ServiceID int64     `gorm:"column:service_id;index"`
	Date      time.Time `gorm:"column:date"`
	TimeSlots string    `gorm:"column:time_slots"`
}

func (availabilityModel) TableName() string { return "service_availability" }

func toDomainService(m serviceModel) *domain.Service {
	return &domain.Service{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Duration:    m.Duration,
		Category:    m.Category,
		ProviderID:  m.ProviderID,
		Rating:      m.Rating,
		ReviewCount: m.ReviewCount,
		Location: domain.Location{
			City:    m.City,
			Area:    m.Area,
			Address: m.Address,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toServiceModel(s *domain.Service) serviceModel {
	return serviceModel{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Price:       s.Price,
		Duration:    s.Duration,
		Category:    s.Category,
		ProviderID:  s.ProviderID,
		Rating:      s.Rating,
		ReviewCount: s.ReviewCount,
		City:        s.Location.City,
		Area:        s.Location.Area,
		Address:     s.Location.Address,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func toDomainAvailability(m availabilityModel) domain.ServiceAvailability {
	return domain.ServiceAvailability{
		ID:        m.ID,
		ServiceID: m.ServiceID,
		Date:      m.Date,
		TimeSlots: unmarshalStrings(m.TimeSlots),
	}
}

func (r *ServiceRepository) Create(ctx context.Context, s *domain.Service) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m := toServiceModel(s)
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		for _, w := range s.Availability {
			am := availabilityModel{
				ServiceID: m.ID,
				Date:      w.Date,
				TimeSlots: marshalStrings(w.TimeSlots),
			}
			if err := tx.Create(&am).Error; err != nil {
				return err
			}
		}
		created := toDomainService(m)
		created.Availability = s.Availability
		*s = *created
		return nil
	})
	if err != nil {
		return normalize(err)
	}

	r.bus.Publish(feed.Event{Table: feed.TableServices, Type: feed.EventInsert, ID: s.ID, Row: s})
	return nil
}

func (r *ServiceRepository) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	var m serviceModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, normalize(err)
	}

	s := toDomainService(m)
	if err := r.attachAvailability(ctx, s); err != nil {
		return nil, err
	}
	if provider, err := loadUser(ctx, r.db, s.ProviderID); err == nil {
		s.Provider = provider
	}
	return s, nil
}

func (r *ServiceRepository) List(ctx context.Context, f domain.SearchFilters) ([]*domain.Service, error) {
	var models []serviceModel
	tx := applyCatalogFilters(r.db.WithContext(ctx).Model(&serviceModel{}), f, false)
	if err := tx.Find(&models).Error; err != nil {
		return nil, normalize(err)
	}

	out := make([]*domain.Service, 0, len(models))
	for _, m := range models {
		out = append(out, toDomainService(m))
	}
	return out, nil
}

func (r *ServiceRepository) ListByProvider(ctx context.Context, providerID int64) ([]*domain.Service, error) {
	var models []serviceModel
	err := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, normalize(err)
	}

	out := make([]*domain.Service, 0, len(models))
	for _, m := range models {
		s := toDomainService(m)
		if err := r.attachAvailability(ctx, s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *ServiceRepository) Update(ctx context.Context, s *domain.Service) error {
	now := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m := toServiceModel(s)
		res := tx.Model(&serviceModel{}).Where("id = ?", m.ID).Updates(map[string]any{
			"name":             m.Name,
			"description":      m.Description,
			"price":            m.Price,
			"duration":         m.Duration,
			"category":         m.Category,
			"location_city":    m.City,
			"location_area":    m.Area,
			"location_address": m.Address,
			"updated_at":       now,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		// Availability is replaced wholesale on every update.
		if err := tx.Where("service_id = ?", m.ID).Delete(&availabilityModel{}).Error; err != nil {
			return err
		}
		for _, w := range s.Availability {
			am := availabilityModel{
				ServiceID: m.ID,
				Date:      w.Date,
				TimeSlots: marshalStrings(w.TimeSlots),
			}
			if err := tx.Create(&am).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return normalize(err)
	}
	s.UpdatedAt = now

	r.bus.Publish(feed.Event{Table: feed.TableServices, Type: feed.EventUpdate, ID: s.ID, Row: s})
	return nil
}

func (r *ServiceRepository) Delete(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&serviceModel{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("service_id = ?", id).Delete(&availabilityModel{}).Error
	})
	if err != nil {
		return normalize(err)
	}

	r.bus.Publish(feed.Event{Table: feed.TableServices, Type: feed.EventDelete, ID: id})
	return nil
}

func (r *ServiceRepository) attachAvailability(ctx context.Context, s *domain.Service) error {
	var models []availabilityModel
	err := r.db.WithContext(ctx).
		Where("service_id = ?", s.ID).
		Order("date ASC").
		Find(&models).Error
	if err != nil {
		return normalize(err)
	}

	s.Availability = make([]domain.ServiceAvailability, 0, len(models))
	for _, m := range models {
		s.Availability = append(s.Availability, toDomainAvailability(m))
	}
	return nil
}
