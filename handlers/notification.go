package handlers

import (
	"errors"
	"lexdesk/middleware"
	"lexdesk/services"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	defaultNotificationLimit = 20
	maxNotificationLimit     = 100
)

// NotificationHandler serves the participant's notification inbox.
type NotificationHandler struct {
	Notifications *services.NotificationService
}

// GetNotifications handles GET /api/notifications?unread=true&limit=20
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	ctx := c.Request().Context()

	limit := defaultNotificationLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid limit")
		}
		limit = min(n, maxNotificationLimit)
	}
	unreadOnly := c.QueryParam("unread") == "true"

	notifications, err := h.Notifications.GetNotifications(ctx, user.ID, unreadOnly, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load notifications")
	}
	unread, err := h.Notifications.GetNotificationCount(ctx, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to count notifications")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"unread":        unread,
	})
}

// MarkNotificationRead handles POST /api/notifications/:id/read
func (h *NotificationHandler) MarkNotificationRead(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	err := h.Notifications.MarkAsRead(c.Request().Context(), c.Param("id"), user.ID)
	if errors.Is(err, services.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error marking as read")
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAllNotificationsRead handles POST /api/notifications/read-all
func (h *NotificationHandler) MarkAllNotificationsRead(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	if err := h.Notifications.MarkAllAsRead(c.Request().Context(), user.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error marking all as read")
	}
	return c.NoContent(http.StatusNoContent)
}
