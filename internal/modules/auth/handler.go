package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"markethub/internal/middleware"
	"markethub/internal/pkg/jwt"
	"markethub/internal/pkg/response"
	"markethub/internal/session"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, jwtService *jwt.Service, sessions *session.Manager) {
	rg.POST("/auth/register", h.Register)
	rg.POST("/auth/login", h.Login)
	rg.POST("/auth/forgot-password", h.ForgotPassword)
	rg.POST("/auth/reset-password", h.ResetPassword)
	rg.GET("/auth/oauth/:provider", h.OAuthLogin)
	rg.GET("/auth/oauth/:provider/callback", h.OAuthCallback)

	authed := rg.Group("", middleware.JWTAuth(jwtService, sessions))
	authed.POST("/auth/logout", h.Logout)
	authed.GET("/auth/me", h.Me)
	authed.PUT("/auth/profile", h.UpdateProfile)
	authed.PUT("/auth/role", h.UpdateRole)
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	res, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		switch err {
		case ErrInvalidRole:
			response.Error(c, http.StatusBadRequest, "INVALID_ROLE", "Unknown account role")
		case ErrEmailTaken:
			response.Error(c, http.StatusConflict, "EMAIL_TAKEN", "Email already registered")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register")
		}
		return
	}

	response.Success(c, http.StatusCreated, res)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		switch err {
		case ErrInvalidCredentials:
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Wrong email or password")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to log in")
		}
		return
	}

	response.Success(c, http.StatusOK, res)
}

func (h *Handler) Logout(c *gin.Context) {
	h.service.Logout(c.GetString("session_id"))
	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}

func (h *Handler) Me(c *gin.Context) {
	user, err := h.service.GetUser(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
		return
	}
	response.Success(c, http.StatusOK, user)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		switch err {
		case ErrUserNotFound:
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update profile")
		}
		return
	}

	response.Success(c, http.StatusOK, user)
}

func (h *Handler) UpdateRole(c *gin.Context) {
	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	res, err := h.service.UpdateRole(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		switch err {
		case ErrInvalidRole:
			response.Error(c, http.StatusBadRequest, "INVALID_ROLE", "Unknown account role")
		case ErrUserNotFound:
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update role")
		}
		return
	}

	response.Success(c, http.StatusOK, res)
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if err := h.service.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process request")
		return
	}

	// Same answer whether the account exists or not.
	response.Success(c, http.StatusOK, gin.H{"sent": true})
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), req); err != nil {
		switch err {
		case ErrInvalidResetToken:
			response.Error(c, http.StatusBadRequest, "INVALID_TOKEN", "Invalid or expired reset token")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to reset password")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reset": true})
}

func (h *Handler) OAuthLogin(c *gin.Context) {
	state := uuid.NewString()
	url, err := h.service.OAuthLoginURL(c.Param("provider"), state)
	if err != nil {
		response.Error(c, http.StatusNotFound, "OAUTH_DISABLED", "Provider not configured")
		return
	}

	c.SetCookie("oauth_state", state, 600, "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

func (h *Handler) OAuthCallback(c *gin.Context) {
	state, err := c.Cookie("oauth_state")
	if err != nil || state == "" || state != c.Query("state") {
		response.Error(c, http.StatusBadRequest, "OAUTH_STATE_MISMATCH", "Invalid OAuth state")
		return
	}

	res, err := h.service.CompleteOAuth(c.Request.Context(), c.Param("provider"), c.Query("code"))
	if err != nil {
		switch err {
		case ErrOAuthDisabled:
			response.Error(c, http.StatusNotFound, "OAUTH_DISABLED", "Provider not configured")
		case ErrOAuthFailed:
			response.Error(c, http.StatusBadGateway, "OAUTH_FAILED", "Provider exchange failed")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to sign in")
		}
		return
	}

	response.Success(c, http.StatusOK, res)
}
