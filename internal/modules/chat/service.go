package chat

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"markethub/internal/domain"
	"markethub/internal/repository"
)

type Service struct {
	messages MessageRepositoryInterface
	users    UserGetter
}

func NewService(messages MessageRepositoryInterface, users UserGetter) *Service {
	return &Service{messages: messages, users: users}
}

// Send stores a text message. The client supplies a correlation id to make
// the send idempotent and to reconcile its optimistic row; a missing id is
// filled in server-side. A retried send returns the original row.
func (s *Service) Send(ctx context.Context, senderID int64, req SendMessageRequest) (*domain.Message, error) {
	if senderID == req.RecipientID {
		return nil, ErrSelfMessage
	}
	if _, err := s.users.GetByID(ctx, req.RecipientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, err
	}

	clientID := req.ClientID
	if clientID == "" {
		clientID = uuid.NewString()
	}

	msg := &domain.Message{
		ClientID:    clientID,
		SenderID:    senderID,
		RecipientID: req.RecipientID,
		Content:     req.Content,
		Type:        domain.MessageText,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return s.messages.GetByClientID(ctx, clientID)
		}
		return nil, err
	}
	return msg, nil
}

// SendImage stores an image message after the handler has persisted the
// file and built its URL.
func (s *Service) SendImage(ctx context.Context, senderID, recipientID int64, imageURL string) (*domain.Message, error) {
	if senderID == recipientID {
		return nil, ErrSelfMessage
	}
	if _, err := s.users.GetByID(ctx, recipientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, err
	}

	msg := &domain.Message{
		ClientID:    uuid.NewString(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Type:        domain.MessageImage,
		ImageURL:    imageURL,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// History returns the full two-way thread with one user, oldest first.
func (s *Service) History(ctx context.Context, userID, otherID int64) ([]*domain.Message, error) {
	return s.messages.ListBetween(ctx, userID, otherID)
}

// Conversations derives the inbox from the flat message list: one entry
// per counterpart carrying the latest message and the unread count.
func (s *Service) Conversations(ctx context.Context, userID int64) ([]*domain.Conversation, error) {
	msgs, err := s.messages.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	byCounterpart := make(map[int64]*domain.Conversation)
	var order []int64

	// Newest first, so the first message per counterpart is the latest.
	for _, m := range msgs {
		counterpartID := m.SenderID
		if counterpartID == userID {
			counterpartID = m.RecipientID
		}

		conv, ok := byCounterpart[counterpartID]
		if !ok {
			conv = &domain.Conversation{CounterpartID: counterpartID, LastMessage: m}
			byCounterpart[counterpartID] = conv
			order = append(order, counterpartID)
		}
		if m.RecipientID == userID && !m.Read {
			conv.UnreadCount++
		}
	}

	out := make([]*domain.Conversation, 0, len(order))
	for _, id := range order {
		conv := byCounterpart[id]
		if u, err := s.users.GetByID(ctx, id); err == nil {
			conv.Counterpart = u
		}
		out = append(out, conv)
	}
	return out, nil
}

// MarkRead flags the listed messages read for the caller. Messages sent by
// the caller or already read are untouched.
func (s *Service) MarkRead(ctx context.Context, userID int64, req MarkReadRequest) error {
	return s.messages.MarkRead(ctx, userID, req.MessageIDs)
}

func (s *Service) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.messages.CountUnread(ctx, userID)
}
