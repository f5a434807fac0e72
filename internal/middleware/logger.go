package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"markethub/internal/pkg/response"
)

// RequestLogger logs one line per request and recovers panics into a 500.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		defer func() {
			if recovered := recover(); recovered != nil {
				log.Error().
					Interface("panic", recovered).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Msg("request panicked")
				response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
				c.Abort()
				return
			}

			evt := log.Info()
			if c.Writer.Status() >= http.StatusInternalServerError {
				evt = log.Error()
			}
			evt.
				Int("status", c.Writer.Status()).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Str("client_ip", c.ClientIP()).
				Int64("user_id", c.GetInt64("user_id")).
				Dur("latency", time.Since(start)).
				Msg("request")
		}()

		c.Next()
	}
}
