package handlers

import (
	"lexdesk/config"
	"lexdesk/middleware"
	"lexdesk/models"
	"lexdesk/services"
	"lexdesk/services/autoreply"
	"lexdesk/services/realtime"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds the services behind the HTTP API so they can be shared with
// the background jobs.
type App struct {
	Config        *config.Config
	DB            *gorm.DB
	Rules         *autoreply.RuleTable
	Cases         *services.CaseDirectory
	Messages      *services.MessageService
	Notifications *services.NotificationService
	Notifier      *services.EmailNotifier
	Dispatcher    *autoreply.Dispatcher
	Hub           *realtime.Hub
}

// NewApp wires the services for cfg. A nil rules table uses the built-in rules.
func NewApp(cfg *config.Config, database *gorm.DB, rules *autoreply.RuleTable, mailer services.Mailer) *App {
	if rules == nil {
		rules = autoreply.DefaultRules()
	}
	cases := services.NewCaseDirectory(database)
	messages := services.NewMessageService(database)
	notifications := services.NewNotificationService(database)
	notifier := services.NewEmailNotifier(mailer, notifications, cfg.DefaultLocale)
	hub := realtime.NewHub(allowedOrigins(cfg.AllowedOrigins))

	dispatcher := autoreply.NewDispatcher(rules, cases, messages, notifier, autoreply.Options{
		Enabled:        cfg.AutoReplyEnabled,
		DefaultLang:    cfg.DefaultLocale,
		AppURL:         cfg.AppURL,
		EmergencyPhone: cfg.EmergencyContactPhone,
		UpcomingLimit:  cfg.AutoReplyUpcomingLimit,
		DocumentLimit:  cfg.AutoReplyDocumentLimit,
	})
	dispatcher.Publisher = hub

	return &App{
		Config:        cfg,
		DB:            database,
		Rules:         rules,
		Cases:         cases,
		Messages:      messages,
		Notifications: notifications,
		Notifier:      notifier,
		Dispatcher:    dispatcher,
		Hub:           hub,
	}
}

// allowedOrigins treats "*" as no restriction.
func allowedOrigins(origins []string) []string {
	var out []string
	for _, o := range origins {
		if o == "*" {
			return nil
		}
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Router builds the echo instance with every route registered.
func (a *App) Router() *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			zap.S().Infow("Request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency, "error", v.Error)
			return nil
		},
	}))
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: a.Config.AllowedOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, middleware.HeaderUserID},
	}))
	e.Use(middleware.Locale(a.Config))

	e.GET("/healthz", HealthHandler(a.DB))

	msg := &MessageHandler{Cases: a.Cases, Messages: a.Messages, Dispatcher: a.Dispatcher, Publisher: a.Hub}
	notif := &NotificationHandler{Notifications: a.Notifications}
	ar := &AutoReplyHandler{Rules: a.Rules, Cases: a.Cases, Dispatcher: a.Dispatcher}
	rt := &RealtimeHandler{Hub: a.Hub}

	limiter := middleware.NewMessageRateLimiter(a.Config.MessageRateLimit)

	protected := e.Group("")
	protected.Use(middleware.RequireAuth(a.Cases))
	{
		protected.GET("/ws", rt.Connect)

		// Conversations (participants only, checked per case/hearing)
		protected.GET("/api/cases/:id/messages", msg.ListCaseMessages)
		protected.POST("/api/cases/:id/messages", msg.PostCaseMessage, limiter.Middleware())
		protected.GET("/api/cases/:id/messages/export", msg.ExportCaseMessages)
		protected.GET("/api/hearings/:id/messages", msg.ListHearingMessages)
		protected.POST("/api/hearings/:id/messages", msg.PostHearingMessage, limiter.Middleware())

		// Notification inbox
		protected.GET("/api/notifications", notif.GetNotifications)
		protected.POST("/api/notifications/:id/read", notif.MarkNotificationRead)
		protected.POST("/api/notifications/read-all", notif.MarkAllNotificationsRead)

		// Auto-reply tooling (staff only)
		staff := protected.Group("/api/auto-reply")
		staff.Use(middleware.RequireRole(models.RoleAdmin, models.RoleLawyer))
		{
			staff.GET("/rules", ar.GetRules)
			staff.POST("/preview", ar.PreviewReply)
		}
	}

	return e
}
