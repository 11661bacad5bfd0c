package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"mathtutor/internal/domain"
	"mathtutor/internal/pkg/jwt"
	"mathtutor/internal/pkg/response"
)

// Context keys set by JWTAuth.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

type TokenValidator interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// JWTAuth validates the bearer token and stores user_id (int64) and role
// (string) on the context.
func JWTAuth(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.AbortError(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Authorization header is required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || strings.TrimSpace(parts[1]) == "" {
			response.AbortError(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'")
			return
		}

		claims, err := tokens.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil || claims.UserID <= 0 {
			response.AbortError(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxRole, claims.Role)
		c.Next()
	}
}

// RejectBanned stops banned or deleted accounts even while their token is
// still valid. Must run after JWTAuth.
func RejectBanned(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := users.GetByID(c.Request.Context(), c.GetInt64(CtxUserID))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.AbortError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Account not found")
				return
			}
			_ = c.Error(err)
			response.AbortError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
			return
		}
		if u.IsBanned {
			response.AbortError(c, http.StatusForbidden, "ACCOUNT_BANNED", "Account is banned")
			return
		}
		// role in the token may be stale
		c.Set(CtxRole, string(u.Role))
		c.Next()
	}
}
