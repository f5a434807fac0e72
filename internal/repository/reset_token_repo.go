package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// ResetTokenRepository stores password reset tokens. Only the hash of a
// token ever touches the database; the plaintext goes out of band to the
// user and is never persisted.
type ResetTokenRepository struct {
	db *gorm.DB
}

func NewResetTokenRepository(db *gorm.DB) *ResetTokenRepository {
	return &ResetTokenRepository{db: db}
}

type resetTokenModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	UserID    int64     `gorm:"column:user_id;index"`
	TokenHash string    `gorm:"column:token_hash;uniqueIndex"`
	ExpiresAt time.Time `gorm:"column:expires_at"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (resetTokenModel) TableName() string { return "password_reset_tokens" }

func (r *ResetTokenRepository) Create(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error {
	m := resetTokenModel{
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return normalize(err)
	}
	return nil
}

// Consume looks the hash up, deletes it and returns the owning user. A
// token works exactly once; expired tokens are rejected and removed.
func (r *ResetTokenRepository) Consume(ctx context.Context, tokenHash string) (int64, error) {
	var userID int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m resetTokenModel
		if err := tx.Where("token_hash = ?", tokenHash).First(&m).Error; err != nil {
			return err
		}
		if err := tx.Delete(&resetTokenModel{}, m.ID).Error; err != nil {
			return err
		}
		if time.Now().After(m.ExpiresAt) {
			return gorm.ErrRecordNotFound
		}
		userID = m.UserID
		return nil
	})
	if err != nil {
		return 0, normalize(err)
	}
	return userID, nil
}

// DeleteExpired purges stale tokens and returns how many were removed.
func (r *ResetTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tx := r.db.WithContext(ctx).Where("expires_at < ?", time.Now()).Delete(&resetTokenModel{})
	if tx.Error != nil {
		return 0, normalize(tx.Error)
	}
	return tx.RowsAffected, nil
}

// DeleteForUser removes any outstanding tokens after a successful reset.
func (r *ResetTokenRepository) DeleteForUser(ctx context.Context, userID int64) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&resetTokenModel{}).Error; err != nil {
		return normalize(err)
	}
	return nil
}
