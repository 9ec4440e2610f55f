// Package middleware holds the gin middleware shared by every route: request
// IDs, the cart session cookie and request logging.
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bpc-market/storefront-service/internal/config"
	"github.com/bpc-market/storefront-service/internal/logging"
)

type contextKey string

const (
	// RequestIDKey carries the request ID on both the gin and the request context.
	RequestIDKey contextKey = "request_id"
	// SessionIDKey carries the cart session ID.
	SessionIDKey contextKey = "session_id"

	RequestIDHeader = "X-Request-ID"
)

// RequestID reuses the caller's X-Request-ID or mints one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(string(RequestIDKey), id)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), RequestIDKey, id))
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// Session ensures every request carries a cart session cookie. A missing or
// malformed cookie gets a fresh session.
func Session(cfg config.SessionConfig) gin.HandlerFunc {
	name := cfg.CookieName
	if name == "" {
		name = "bpc_session"
	}
	maxAge := int(cfg.MaxAge / time.Second)

	return func(c *gin.Context) {
		id, err := c.Cookie(name)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
		}
		// Refresh on every request so active sessions slide forward.
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(name, id, maxAge, "/", "", cfg.Secure, true)

		c.Set(string(SessionIDKey), id)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), SessionIDKey, id))
		c.Next()
	}
}

// SessionID returns the session attached by Session, or "".
func SessionID(c *gin.Context) string {
	return c.GetString(string(SessionIDKey))
}

// RequestIDFromContext extracts the request ID from a request context.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// Logger writes one structured line per request.
func Logger(logger *logging.Logger) gin.HandlerFunc {
	log := logger.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logging.Fields{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"request_id": c.GetString(string(RequestIDKey)),
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			log.Error("Request failed", fields)
		case c.Writer.Status() >= http.StatusBadRequest:
			log.Warn("Request rejected", fields)
		default:
			log.Debug("Request served", fields)
		}
	}
}
