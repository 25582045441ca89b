package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"

	"github.com/zarenu/zare-api/internal/models"
	"github.com/zarenu/zare-api/internal/social"
	"github.com/zarenu/zare-api/pkg/dto"
)

const (
	UserIDKey = "user_id"
	UserKey   = "user"
)

// TokenAuthenticator resolves an opaque credential to its user.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, key string) (*models.User, error)
}

func notAuthenticated(c *drift.Context, msg string) {
	_ = c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
		Success: false,
		Error:   msg,
		Code:    string(social.CodeNotAuthenticated),
	})
}

// Auth accepts "Token <key>" or "Bearer <key>".
func Auth(tokens TokenAuthenticator) drift.HandlerFunc {
	return func(c *drift.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			notAuthenticated(c, "Authentication required")
			return
		}

		scheme, key, ok := strings.Cut(authHeader, " ")
		key = strings.TrimSpace(key)
		if !ok || key == "" || (!strings.EqualFold(scheme, "token") && !strings.EqualFold(scheme, "bearer")) {
			notAuthenticated(c, "Invalid authorization header format")
			return
		}

		user, err := tokens.Authenticate(c.Request.Context(), key)
		if err != nil {
			notAuthenticated(c, "Invalid token")
			return
		}

		c.Set(UserIDKey, user.ID)
		c.Set(UserKey, user)

		c.Next()
	}
}

// RequireStaff must run after Auth.
func RequireStaff() drift.HandlerFunc {
	return func(c *drift.Context) {
		user := GetUser(c)
		if user == nil {
			notAuthenticated(c, "Authentication required")
			return
		}
		if !user.IsStaff {
			_ = c.JSON(http.StatusForbidden, dto.ErrorResponse{
				Success: false,
				Error:   "Admin access required",
			})
			return
		}
		c.Next()
	}
}

func GetUserID(c *drift.Context) uuid.UUID {
	if id, ok := c.Get(UserIDKey); ok {
		if uid, ok := id.(uuid.UUID); ok {
			return uid
		}
	}
	return uuid.Nil
}

func GetUser(c *drift.Context) *models.User {
	if v, ok := c.Get(UserKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}
