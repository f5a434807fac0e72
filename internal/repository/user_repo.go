package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"markethub/internal/domain"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userModel struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	Email        string    `gorm:"column:email;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash"`
	Name         string    `gorm:"column:name"`
	Role         string    `gorm:"column:role"`
	AvatarURL    *string   `gorm:"column:avatar_url"`
	City         string    `gorm:"column:location_city"`
	Area         string    `gorm:"column:location_area"`
	Address      string    `gorm:"column:location_address"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

func toDomainUser(m userModel) *domain.User {
	var avatar string
	if m.AvatarURL != nil {
		avatar = *m.AvatarURL
	}

	return &domain.User{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Name:         m.Name,
		Role:         domain.UserRole(m.Role),
		AvatarURL:    avatar,
		Location: domain.Location{
			City:    m.City,
			Area:    m.Area,
			Address: m.Address,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toUserModel(u *domain.User) userModel {
	var avatar *string
	if u.AvatarURL != "" {
		v := u.AvatarURL
		avatar = &v
	}

	return userModel{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Name:         u.Name,
		Role:         string(u.Role),
		AvatarURL:    avatar,
		City:         u.Location.City,
		Area:         u.Location.Area,
		Address:      u.Location.Address,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	m := toUserModel(u)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return normalize(err)
	}
	*u = *toDomainUser(m)
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var m userModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, normalize(err)
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m userModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		return nil, normalize(err)
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	m := toUserModel(u)
	m.UpdatedAt = time.Now()

	tx := r.db.WithContext(ctx).Model(&userModel{}).Where("id = ?", m.ID).Updates(map[string]any{
		"name":             m.Name,
		"role":             m.Role,
		"avatar_url":       m.AvatarURL,
		"password_hash":    m.PasswordHash,
		"location_city":    m.City,
		"location_area":    m.Area,
		"location_address": m.Address,
		"updated_at":       m.UpdatedAt,
	})
	if tx.Error != nil {
		return normalize(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	u.UpdatedAt = m.UpdatedAt
	return nil
}
