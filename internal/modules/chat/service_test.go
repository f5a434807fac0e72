package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"markethub/internal/domain"
	"markethub/internal/repository"
)

type mockMessageRepo struct {
	mock.Mock
}

func (m *mockMessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	if args.Error(0) == nil {
		msg.ID = 1
	}
	return args.Error(0)
}

func (m *mockMessageRepo) GetByClientID(ctx context.Context, clientID string) (*domain.Message, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *mockMessageRepo) ListBetween(ctx context.Context, a, b int64) ([]*domain.Message, error) {
	args := m.Called(ctx, a, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Message), args.Error(1)
}

func (m *mockMessageRepo) ListForUser(ctx context.Context, userID int64) ([]*domain.Message, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Message), args.Error(1)
}

func (m *mockMessageRepo) MarkRead(ctx context.Context, recipientID int64, ids []int64) error {
	args := m.Called(ctx, recipientID, ids)
	return args.Error(0)
}

func (m *mockMessageRepo) CountUnread(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type mockUserGetter struct {
	mock.Mock
}

func (m *mockUserGetter) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func TestSend_GeneratesClientID(t *testing.T) {
	messages := new(mockMessageRepo)
	users := new(mockUserGetter)
	svc := NewService(messages, users)

	users.On("GetByID", mock.Anything, int64(2)).Return(&domain.User{ID: 2}, nil)
	messages.On("Create", mock.Anything, mock.AnythingOfType("*domain.Message")).Return(nil)

	msg, err := svc.Send(context.Background(), 1, SendMessageRequest{RecipientID: 2, Content: "hi"})

	assert.NoError(t, err)
	assert.NotEmpty(t, msg.ClientID)
	assert.Equal(t, domain.MessageText, msg.Type)
}

func TestSend_RetryReturnsOriginal(t *testing.T) {
	messages := new(mockMessageRepo)
	users := new(mockUserGetter)
	svc := NewService(messages, users)

	users.On("GetByID", mock.Anything, int64(2)).Return(&domain.User{ID: 2}, nil)
	messages.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicate)
	messages.On("GetByClientID", mock.Anything, "retry-1").Return(&domain.Message{
		ID: 77, ClientID: "retry-1", SenderID: 1, RecipientID: 2, Content: "hi",
	}, nil)

	msg, err := svc.Send(context.Background(), 1, SendMessageRequest{
		RecipientID: 2, Content: "hi", ClientID: "retry-1",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(77), msg.ID, "duplicate send resolves to the first row")
}

func TestSend_RejectsSelf(t *testing.T) {
	svc := NewService(new(mockMessageRepo), new(mockUserGetter))

	_, err := svc.Send(context.Background(), 1, SendMessageRequest{RecipientID: 1, Content: "hi"})

	assert.ErrorIs(t, err, ErrSelfMessage)
}

func TestSend_UnknownRecipient(t *testing.T) {
	messages := new(mockMessageRepo)
	users := new(mockUserGetter)
	svc := NewService(messages, users)

	users.On("GetByID", mock.Anything, int64(9)).Return(nil, repository.ErrNotFound)

	_, err := svc.Send(context.Background(), 1, SendMessageRequest{RecipientID: 9, Content: "hi"})

	assert.ErrorIs(t, err, ErrRecipientNotFound)
}

// Conversations groups the flat list by counterpart: latest message wins,
// unread counts only messages addressed to the caller.
func TestConversations_GroupsByCounterpart(t *testing.T) {
	messages := new(mockMessageRepo)
	users := new(mockUserGetter)
	svc := NewService(messages, users)

	now := time.Now()
	// Newest first, as the repository returns them.
	messages.On("ListForUser", mock.Anything, int64(1)).Return([]*domain.Message{
		{ID: 5, SenderID: 3, RecipientID: 1, Content: "newest from 3", Read: false, CreatedAt: now},
		{ID: 4, SenderID: 1, RecipientID: 2, Content: "me to 2", Read: false, CreatedAt: now.Add(-time.Minute)},
		{ID: 3, SenderID: 3, RecipientID: 1, Content: "older from 3", Read: false, CreatedAt: now.Add(-2 * time.Minute)},
		{ID: 2, SenderID: 2, RecipientID: 1, Content: "from 2", Read: true, CreatedAt: now.Add(-3 * time.Minute)},
		{ID: 1, SenderID: 3, RecipientID: 1, Content: "oldest from 3", Read: true, CreatedAt: now.Add(-4 * time.Minute)},
	}, nil)
	users.On("GetByID", mock.Anything, int64(2)).Return(&domain.User{ID: 2, Name: "Bea"}, nil)
	users.On("GetByID", mock.Anything, int64(3)).Return(&domain.User{ID: 3, Name: "Cal"}, nil)

	convs, err := svc.Conversations(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, convs, 2)

	// Ordered by most recent activity.
	assert.Equal(t, int64(3), convs[0].CounterpartID)
	assert.Equal(t, int64(5), convs[0].LastMessage.ID)
	assert.Equal(t, 2, convs[0].UnreadCount, "two unread from user 3")
	assert.Equal(t, "Cal", convs[0].Counterpart.Name)

	assert.Equal(t, int64(2), convs[1].CounterpartID)
	assert.Equal(t, int64(4), convs[1].LastMessage.ID)
	assert.Equal(t, 0, convs[1].UnreadCount, "own sent message never counts as unread")
}

func TestMarkRead_PassesCallerAsRecipient(t *testing.T) {
	messages := new(mockMessageRepo)
	svc := NewService(messages, new(mockUserGetter))

	messages.On("MarkRead", mock.Anything, int64(1), []int64{4, 5}).Return(nil)

	err := svc.MarkRead(context.Background(), 1, MarkReadRequest{MessageIDs: []int64{4, 5}})

	assert.NoError(t, err)
	messages.AssertExpectations(t)
}
