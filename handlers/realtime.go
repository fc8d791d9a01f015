package handlers

import (
	"lexdesk/middleware"
	"lexdesk/services/realtime"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RealtimeHandler upgrades participants to the live message feed.
type RealtimeHandler struct {
	Hub *realtime.Hub
}

// Connect handles GET /ws
func (h *RealtimeHandler) Connect(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	if err := h.Hub.Serve(c.Response(), c.Request(), user.ID); err != nil {
		// The upgrader has already written the HTTP error.
		zap.S().Debugw("Websocket session ended", "user_id", user.ID, "error", err)
	}
	return nil
}

// HealthHandler handles GET /healthz
func HealthHandler(database *gorm.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		sqlDB, err := database.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request().Context())
		}
		if err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
}
