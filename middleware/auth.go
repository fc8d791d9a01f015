package middleware

import (
	"context"
	"errors"
	"lexdesk/models"
	"lexdesk/services"
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	// HeaderUserID carries the authenticated participant, set by the gateway
	// that terminates the session in front of this service.
	HeaderUserID = "X-User-ID"
	// ContextKeyUser is the context key for the authenticated user
	ContextKeyUser = "user"
)

// UserLookup resolves a participant by id.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// RequireAuth resolves the participant named by the X-User-ID header.
// Websocket clients cannot set headers, so a user_id query parameter is
// accepted as well.
func RequireAuth(users UserLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := c.Request().Header.Get(HeaderUserID)
			if userID == "" {
				userID = c.QueryParam("user_id")
			}
			if userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
			}

			user, err := users.GetUserByID(c.Request().Context(), userID)
			if err != nil {
				if errors.Is(err, services.ErrNotFound) {
					return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
				}
				return err
			}
			if !user.IsActive {
				return echo.NewHTTPError(http.StatusUnauthorized, "Account is inactive")
			}

			c.Set(ContextKeyUser, user)
			return next(c)
		}
	}
}

// RequireRole is middleware that requires specific roles
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := GetCurrentUser(c)
			if user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
			}

			for _, role := range roles {
				if user.Role == role {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
		}
	}
}

// GetCurrentUser retrieves the current user from context
func GetCurrentUser(c echo.Context) *models.User {
	user, ok := c.Get(ContextKeyUser).(*models.User)
	if !ok {
		return nil
	}
	return user
}
