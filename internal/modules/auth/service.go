package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"markethub/internal/domain"
	"markethub/internal/pkg/jwt"
	"markethub/internal/repository"
	"markethub/internal/session"
)

// Service contains all business logic for authentication and profiles.
type Service struct {
	users       UserRepositoryInterface
	resetTokens ResetTokenRepositoryInterface
	jwt         *jwt.Service
	sessions    *session.Manager
	mailer      Mailer
	resetPepper string
	resetTTL    time.Duration
	oauth       map[string]*oauthProvider
}

func NewService(
	users UserRepositoryInterface,
	resetTokens ResetTokenRepositoryInterface,
	jwtService *jwt.Service,
	sessions *session.Manager,
	mailer Mailer,
	resetPepper string,
	resetTTL time.Duration,
) *Service {
	return &Service{
		users:       users,
		resetTokens: resetTokens,
		jwt:         jwtService,
		sessions:    sessions,
		mailer:      mailer,
		resetPepper: resetPepper,
		resetTTL:    resetTTL,
		oauth:       make(map[string]*oauthProvider),
	}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	role := domain.UserRole(req.Role)
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	hashed, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        normalizeEmail(req.Email),
		PasswordHash: hashed,
		Name:         req.Name,
		Role:         role,
		Location:     req.Location,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return s.establishSession(user)
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return s.establishSession(user)
}

// Logout revokes the session behind the presented token. The manager tells
// the realtime gateway, which closes the socket.
func (s *Service) Logout(sessionID string) {
	s.sessions.Revoke(sessionID)
}

func (s *Service) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*domain.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Name = req.Name
	user.AvatarURL = req.AvatarURL
	user.Location = req.Location

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateRole switches the account's role. Every open session is revoked so
// no stale token keeps the old role's permissions; the caller gets a fresh
// token for the new role.
func (s *Service) UpdateRole(ctx context.Context, userID int64, req UpdateRoleRequest) (*AuthResponse, error) {
	role := domain.UserRole(req.Role)
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.sessions.RevokeUser(userID)
	return s.establishSession(user)
}

// RequestPasswordReset issues a one-time token. Unknown emails are silently
// accepted, the endpoint must not reveal which accounts exist.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return err
	}
	token := hex.EncodeToString(raw)

	if err := s.resetTokens.Create(ctx, user.ID, s.hashResetToken(token), time.Now().Add(s.resetTTL)); err != nil {
		return err
	}
	return s.mailer.SendPasswordReset(ctx, user.Email, token)
}

func (s *Service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	userID, err := s.resetTokens.Consume(ctx, s.hashResetToken(req.Token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	hashed, err := s.hashPassword(req.Password)
	if err != nil {
		return err
	}
	user.PasswordHash = hashed

	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	_ = s.resetTokens.DeleteForUser(ctx, userID)
	s.sessions.RevokeUser(userID)
	return nil
}

func (s *Service) establishSession(user *domain.User) (*AuthResponse, error) {
	token, sessionID, expiresAt, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	s.sessions.Put(session.Session{
		ID:        sessionID,
		UserID:    user.ID,
		Role:      user.Role,
		ExpiresAt: expiresAt,
	})

	user.PasswordHash = ""
	return &AuthResponse{User: user, Token: token}, nil
}

func (s *Service) hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// hashResetToken peppers the token before hashing so a leaked table is not
// enough to forge resets.
func (s *Service) hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token + s.resetPepper))
	return hex.EncodeToString(sum[:])
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
