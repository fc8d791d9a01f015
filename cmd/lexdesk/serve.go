package main

import (
	"context"
	"errors"
	"lexdesk/db"
	"lexdesk/handlers"
	"lexdesk/services"
	"lexdesk/services/jobs"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, realtime feed and background jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			rules, err := loadRules(cfg.AutoReplyRulesPath)
			if err != nil {
				return err
			}
			mailer, err := services.NewMailer(cfg)
			if err != nil {
				return err
			}
			if cfg.EmailTestMode {
				zap.S().Warn("Email test mode is on; emails are logged, not sent")
			}

			app := handlers.NewApp(cfg, db.DB, rules, mailer)
			e := app.Router()

			scheduler := jobs.NewScheduler(db.DB, cfg, app.Notifier, app.Notifications)
			if err := scheduler.Start(); err != nil {
				return err
			}
			defer scheduler.Stop()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go func() {
				zap.S().Infow("Server starting", "port", cfg.ServerPort, "environment", cfg.Environment, "auto_reply", cfg.AutoReplyEnabled)
				if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
					zap.S().Errorw("Server stopped", "error", err)
					stop()
				}
			}()

			<-ctx.Done()
			zap.S().Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return e.Shutdown(shutdownCtx)
		},
	}
}
