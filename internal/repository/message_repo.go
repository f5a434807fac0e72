package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"markethub/internal/domain"
	"markethub/internal/feed"
)

type MessageRepository struct {
	db  *gorm.DB
	bus *feed.Bus
}

func NewMessageRepository(db *gorm.DB, bus *feed.Bus) *MessageRepository {
	return &MessageRepository{db: db, bus: bus}
}

type messageModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	ClientID    string    `gorm:"column:client_id;uniqueIndex"`
	SenderID    int64     `gorm:"column:sender_id;index"`
	RecipientID int64     `gorm:"column:recipient_id;index"`
	Content     string    `gorm:"column:content"`
	Type        string    `gorm:"column:type"`
	ImageURL    *string   `gorm:"column:image_url"`
	Read        bool      `gorm:"column:read"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (messageModel) TableName() string { return "messages" }

func toDomainMessage(m messageModel) *domain.Message {
	var imageURL string
	if m.ImageURL != nil {
		imageURL = *m.ImageURL
	}

	return &domain.Message{
		ID:          m.ID,
		ClientID:    m.ClientID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Content:     m.Content,
		Type:        domain.MessageType(m.Type),
		ImageURL:    imageURL,
		Read:        m.Read,
		CreatedAt:   m.CreatedAt,
	}
}

// Create stores the message. The client_id unique index makes retried sends
// collapse into ErrDuplicate; callers resolve those via GetByClientID. The
// published event echoes the client id so the sender's optimistic row is
// replaced, not duplicated.
func (r *MessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	var imageURL *string
	if msg.ImageURL != "" {
		v := msg.ImageURL
		imageURL = &v
	}

	m := messageModel{
		ClientID:    msg.ClientID,
		SenderID:    msg.SenderID,
		RecipientID: msg.RecipientID,
		Content:     msg.Content,
		Type:        string(msg.Type),
		ImageURL:    imageURL,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return normalize(err)
	}
	*msg = *toDomainMessage(m)

	r.bus.Publish(feed.Event{
		Table:    feed.TableMessages,
		Type:     feed.EventInsert,
		ID:       msg.ID,
		ClientID: msg.ClientID,
		Row:      msg,
	})
	return nil
}

func (r *MessageRepository) GetByClientID(ctx context.Context, clientID string) (*domain.Message, error) {
	var m messageModel
	if err := r.db.WithContext(ctx).Where("client_id = ?", clientID).First(&m).Error; err != nil {
		return nil, normalize(err)
	}
	return toDomainMessage(m), nil
}

// ListBetween returns the full two-way history between two users, oldest
// first, the order a chat pane renders in.
func (r *MessageRepository) ListBetween(ctx context.Context, a, b int64) ([]*domain.Message, error) {
	var models []messageModel
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)", a, b, b, a).
		Order("created_at ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, normalize(err)
	}
	return toDomainMessages(models), nil
}

// ListForUser returns every message the user sent or received, newest
// first. Conversation grouping happens in the service.
func (r *MessageRepository) ListForUser(ctx context.Context, userID int64) ([]*domain.Message, error) {
	var models []messageModel
	err := r.db.WithContext(ctx).
		Where("sender_id = ? OR recipient_id = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Find(&models).Error
	if err != nil {
		return nil, normalize(err)
	}
	return toDomainMessages(models), nil
}

// MarkRead flags the given messages read, but only those addressed to the
// caller. Each flipped row goes out as an update event.
func (r *MessageRepository) MarkRead(ctx context.Context, recipientID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	var flipped []messageModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("id IN ? AND recipient_id = ? AND read = ?", ids, recipientID, false).
			Find(&flipped).Error; err != nil {
			return err
		}
		if len(flipped) == 0 {
			return nil
		}

		flippedIDs := make([]int64, 0, len(flipped))
		for _, m := range flipped {
			flippedIDs = append(flippedIDs, m.ID)
		}
		return tx.Model(&messageModel{}).
			Where("id IN ?", flippedIDs).
			Update("read", true).Error
	})
	if err != nil {
		return normalize(err)
	}

	for _, m := range flipped {
		m.Read = true
		msg := toDomainMessage(m)
		r.bus.Publish(feed.Event{Table: feed.TableMessages, Type: feed.EventUpdate, ID: msg.ID, Row: msg})
	}
	return nil
}

// CountUnread returns the user's unread total across all conversations.
func (r *MessageRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&messageModel{}).
		Where("recipient_id = ? AND read = ?", userID, false).
		Count(&cnt).Error
	if err != nil {
		return 0, normalize(err)
	}
	return cnt, nil
}

func toDomainMessages(models []messageModel) []*domain.Message {
	out := make([]*domain.Message, 0, len(models))
	for _, m := range models {
		out = append(out, toDomainMessage(m))
	}
	return out
}
