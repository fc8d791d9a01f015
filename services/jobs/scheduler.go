package jobs

import (
	"context"
	"fmt"
	"lexdesk/config"
	"lexdesk/services"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const jobTimeout = 5 * time.Minute

// Scheduler runs the periodic background jobs.
type Scheduler struct {
	cron     *cron.Cron
	db       *gorm.DB
	cfg      *config.Config
	notifier *services.EmailNotifier
	ledger   *services.NotificationService
}

func NewScheduler(db *gorm.DB, cfg *config.Config, notifier *services.EmailNotifier, ledger *services.NotificationService) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		db:       db,
		cfg:      cfg,
		notifier: notifier,
		ledger:   ledger,
	}
}

// Start registers the jobs and starts the cron loop. The retry sweep only
// runs when enabled in configuration.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.HearingReminderSchedule, s.hearingReminders); err != nil {
		return fmt.Errorf("failed to register hearing reminder job: %w", err)
	}
	if s.cfg.NotificationRetryEnabled {
		if _, err := s.cron.AddFunc(s.cfg.NotificationRetrySchedule, s.retryNotifications); err != nil {
			return fmt.Errorf("failed to register notification retry job: %w", err)
		}
	}
	s.cron.Start()
	zap.S().Infow("Scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Scheduler stopped")
}

func (s *Scheduler) hearingReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	SendHearingReminders(ctx, s.db, s.notifier, s.cfg.AppURL)
}

func (s *Scheduler) retryNotifications() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	RetryFailedNotifications(ctx, s.ledger, s.notifier, s.cfg.NotificationRetryMaxAttempts)
}
