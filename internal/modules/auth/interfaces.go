package auth

import (
	"context"
	"time"

	"markethub/internal/domain"
)

// UserRepositoryInterface lists only the methods the auth service uses.
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
}

// ResetTokenRepositoryInterface is the storage for password reset tokens.
type ResetTokenRepositoryInterface interface {
	Create(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error
	Consume(ctx context.Context, tokenHash string) (int64, error)
	DeleteForUser(ctx context.Context, userID int64) error
}

// Mailer delivers the reset token out of band. The dev wiring just logs it.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, token string) error
}
