package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"markethub/internal/pkg/jwt"
	"markethub/internal/pkg/response"
	"markethub/internal/session"
)

// JWTAuth validates the bearer token and checks the embedded session id
// against the session manager, so a logged-out token is rejected even while
// its signature is still valid.
func JWTAuth(jwtService *jwt.Service, sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Authorization header is required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Error(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'")
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(parts[1])
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			c.Abort()
			return
		}

		if _, ok := sessions.Get(claims.ID); !ok {
			response.Error(c, http.StatusUnauthorized, "SESSION_REVOKED", "Session is no longer active")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Set("session_id", claims.ID)
		c.Next()
	}
}
