package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"markethub/internal/domain"
	"markethub/internal/pkg/jwt"
	"markethub/internal/repository"
	"markethub/internal/session"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	if args.Error(0) == nil {
		u.ID = 1
	}
	return args.Error(0)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

type mockResetTokenRepo struct {
	mock.Mock
}

func (m *mockResetTokenRepo) Create(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *mockResetTokenRepo) Consume(ctx context.Context, tokenHash string) (int64, error) {
	args := m.Called(ctx, tokenHash)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockResetTokenRepo) DeleteForUser(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type captureMailer struct {
	email string
	token string
}

func (m *captureMailer) SendPasswordReset(_ context.Context, email, token string) error {
	m.email = email
	m.token = token
	return nil
}

func newTestService(users *mockUserRepo, tokens *mockResetTokenRepo, mailer Mailer) (*Service, *session.Manager) {
	if mailer == nil {
		mailer = &captureMailer{}
	}
	sessions := session.NewManager()
	svc := NewService(users, tokens, jwt.New("test-secret", time.Hour), sessions, mailer, "pepper", time.Hour)
	return svc, sessions
}

func TestRegister_Success(t *testing.T) {
	users := new(mockUserRepo)
	svc, sessions := newTestService(users, new(mockResetTokenRepo), nil)

	users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	res, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "Buyer@Example.com",
		Password: "secret-password",
		Name:     "Buyer",
		Role:     "customer",
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "buyer@example.com", res.User.Email, "email is normalized")
	assert.Empty(t, res.User.PasswordHash)
	assert.Equal(t, 1, sessions.Len(), "registration opens a session")
	users.AssertExpectations(t)
}

func TestRegister_RejectsUnknownRole(t *testing.T) {
	svc, _ := newTestService(new(mockUserRepo), new(mockResetTokenRepo), nil)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "x@example.com",
		Password: "secret-password",
		Name:     "X",
		Role:     "admin",
	})

	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := new(mockUserRepo)
	svc, _ := newTestService(users, new(mockResetTokenRepo), nil)

	users.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicate)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "taken@example.com",
		Password: "secret-password",
		Name:     "X",
		Role:     "retailer",
	})

	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin_Success(t *testing.T) {
	users := new(mockUserRepo)
	svc, _ := newTestService(users, new(mockResetTokenRepo), nil)

	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	users.On("GetByEmail", mock.Anything, "user@example.com").Return(&domain.User{
		ID:           5,
		Email:        "user@example.com",
		PasswordHash: string(hash),
		Role:         domain.RoleCustomer,
	}, nil)

	res, err := svc.Login(context.Background(), LoginRequest{Email: "user@example.com", Password: "correct-horse"})

	assert.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}

func TestLogin_WrongPassword(t *testing.T) {
	users := new(mockUserRepo)
	svc, _ := newTestService(users, new(mockResetTokenRepo), nil)

	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	users.On("GetByEmail", mock.Anything, "user@example.com").Return(&domain.User{
		ID:           5,
		Email:        "user@example.com",
		PasswordHash: string(hash),
	}, nil)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "user@example.com", Password: "wrong"})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	users := new(mockUserRepo)
	svc, _ := newTestService(users, new(mockResetTokenRepo), nil)

	users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, repository.ErrNotFound)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "whatever"})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogout_RevokesSession(t *testing.T) {
	users := new(mockUserRepo)
	svc, sessions := newTestService(users, new(mockResetTokenRepo), nil)

	users.On("Create", mock.Anything, mock.Anything).Return(nil)
	res, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "u@example.com",
		Password: "secret-password",
		Name:     "U",
		Role:     "customer",
	})
	assert.NoError(t, err)

	claims, err := jwt.New("test-secret", time.Hour).ValidateToken(res.Token)
	assert.NoError(t, err)

	svc.Logout(claims.ID)
	assert.Equal(t, 0, sessions.Len())
}

func TestUpdateRole_RevokesOldSessions(t *testing.T) {
	users := new(mockUserRepo)
	svc, sessions := newTestService(users, new(mockResetTokenRepo), nil)

	user := &domain.User{ID: 9, Email: "u@example.com", Role: domain.RoleCustomer}
	users.On("GetByID", mock.Anything, int64(9)).Return(user, nil)
	users.On("Update", mock.Anything, mock.Anything).Return(nil)

	sessions.Put(session.Session{ID: "old", UserID: 9, Role: domain.RoleCustomer, ExpiresAt: time.Now().Add(time.Hour)})

	res, err := svc.UpdateRole(context.Background(), 9, UpdateRoleRequest{Role: "retailer"})

	assert.NoError(t, err)
	assert.Equal(t, domain.RoleRetailer, res.User.Role)
	_, oldAlive := sessions.Get("old")
	assert.False(t, oldAlive, "previous sessions die with the old role")
	assert.Equal(t, 1, sessions.Len(), "exactly the fresh session remains")
}

func TestPasswordReset_RoundTrip(t *testing.T) {
	users := new(mockUserRepo)
	tokens := new(mockResetTokenRepo)
	mailer := &captureMailer{}
	svc, _ := newTestService(users, tokens, mailer)

	user := &domain.User{ID: 3, Email: "u@example.com", Role: domain.RoleCustomer}
	users.On("GetByEmail", mock.Anything, "u@example.com").Return(user, nil)
	users.On("GetByID", mock.Anything, int64(3)).Return(user, nil)
	users.On("Update", mock.Anything, mock.Anything).Return(nil)

	var storedHash string
	tokens.On("Create", mock.Anything, int64(3), mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) { storedHash = args.String(2) }).
		Return(nil)

	assert.NoError(t, svc.RequestPasswordReset(context.Background(), "u@example.com"))
	assert.NotEmpty(t, mailer.token, "plaintext token goes to the mailer")
	assert.NotEqual(t, mailer.token, storedHash, "only the hash is stored")

	tokens.On("Consume", mock.Anything, storedHash).Return(int64(3), nil)
	tokens.On("DeleteForUser", mock.Anything, int64(3)).Return(nil)

	err := svc.ResetPassword(context.Background(), ResetPasswordRequest{Token: mailer.token, Password: "brand-new-pass"})
	assert.NoError(t, err)
}

func TestPasswordReset_UnknownEmailIsSilent(t *testing.T) {
	users := new(mockUserRepo)
	svc, _ := newTestService(users, new(mockResetTokenRepo), nil)

	users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, repository.ErrNotFound)

	assert.NoError(t, svc.RequestPasswordReset(context.Background(), "ghost@example.com"))
}

func TestResetPassword_BadToken(t *testing.T) {
	users := new(mockUserRepo)
	tokens := new(mockResetTokenRepo)
	svc, _ := newTestService(users, tokens, nil)

	tokens.On("Consume", mock.Anything, mock.Anything).Return(int64(0), repository.ErrNotFound)

	err := svc.ResetPassword(context.Background(), ResetPasswordRequest{Token: "bogus", Password: "brand-new-pass"})
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}
