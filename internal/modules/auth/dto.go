package auth

import "markethub/internal/domain"

type RegisterRequest struct {
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required,min=8"`
	Name     string          `json:"name" binding:"required"`
	Role     string          `json:"role" binding:"required"`
	Location domain.Location `json:"location"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name      string          `json:"name" binding:"required"`
	AvatarURL string          `json:"avatar_url"`
	Location  domain.Location `json:"location"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// AuthResponse is returned by every operation that establishes a session.
type AuthResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}
