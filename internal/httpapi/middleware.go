package httpapi

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/vladimiradmaev/nutrition-tracker/internal/errors"
)

const (
	requestIDKey = "request_id"
	userIDKey    = "user_id"
)

// RequestIDMiddleware ensures every request has a correlation/request ID
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(requestIDKey, reqID)
		c.Writer.Header().Set("X-Request-ID", reqID)
		c.Next()
	}
}

func AccessLogMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "HTTP request",
			"request_id", c.GetString(requestIDKey),
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"user_id", c.GetString(userIDKey))
	}
}

func RecoveryMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.ErrorContext(c.Request.Context(), "Panic while serving request",
			"request_id", c.GetString(requestIDKey),
			"path", c.Request.URL.Path,
			"panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, apiResponse{
			Error: &errorBody{Type: apperrors.ErrorTypeInternal, Code: "INTERNAL", Message: "Internal server error"},
		})
	})
}

// bearerToken returns the token of an "Authorization: Bearer" header.
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")), true
}

// tokenMatches is false whenever no token is configured.
func tokenMatches(expected, got string) bool {
	if expected == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(got)) == 1
}

// adminAuth guards catalog mutation and maintenance routes with the sync
// token.
func (h *Handler) adminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok || !tokenMatches(h.syncToken, token) {
			h.fail(c, apperrors.NewAuthError("Unauthorized"))
			return
		}
		c.Next()
	}
}

// userIdentity resolves the caller from the identity header and makes
// sure the user row exists.
func (h *Handler) userIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(h.userIDHeader))
		if userID == "" {
			h.fail(c, apperrors.NewAuthError("missing "+h.userIDHeader+" header"))
			return
		}
		if _, err := h.users.EnsureUserExists(c.Request.Context(), userID); err != nil {
			h.fail(c, err)
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}
