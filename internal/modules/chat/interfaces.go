package chat

import (
	"context"

	"markethub/internal/domain"
)

// MessageRepositoryInterface lists only the methods the chat service uses.
type MessageRepositoryInterface interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByClientID(ctx context.Context, clientID string) (*domain.Message, error)
	ListBetween(ctx context.Context, a, b int64) ([]*domain.Message, error)
	ListForUser(ctx context.Context, userID int64) ([]*domain.Message, error)
	MarkRead(ctx context.Context, recipientID int64, ids []int64) error
	CountUnread(ctx context.Context, userID int64) (int64, error)
}

// UserGetter resolves conversation counterparts.
type UserGetter interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}
