package jobs

import (
	"context"
	"lexdesk/models"
	"lexdesk/services/autoreply"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReminderSender delivers one hearing reminder.
type ReminderSender interface {
	SendHearingReminder(ctx context.Context, c *models.Case, h *models.Hearing, to autoreply.Recipient, caseURL string) error
}

// SendHearingReminders emails the client, the assigned lawyer and the judge
// of every active hearing starting 24 to 48 hours from now that has not been
// reminded yet. It returns how many hearings were reminded.
func SendHearingReminders(ctx context.Context, database *gorm.DB, sender ReminderSender, appURL string) int {
	zap.S().Info("Starting hearing reminder job")

	now := time.Now().UTC()
	windowStart := now.Add(24 * time.Hour)
	windowEnd := now.Add(48 * time.Hour)

	var hearings []models.Hearing
	err := database.WithContext(ctx).
		Preload("Judge").
		Preload("Case.Client").
		Preload("Case.AssignedTo").
		Preload("Case.Firm").
		Where("status IN ?", []string{models.HearingStatusScheduled, models.HearingStatusPostponed}).
		Where("scheduled_at >= ? AND scheduled_at <= ?", windowStart, windowEnd).
		Where("reminder_sent_at IS NULL").
		Find(&hearings).Error
	if err != nil {
		zap.S().Errorw("Error fetching hearings for reminders", "error", err)
		return 0
	}

	zap.S().Infow("Found hearings to remind", "count", len(hearings))

	reminded := 0
	for i := range hearings {
		h := &hearings[i]
		if h.Case == nil {
			continue
		}
		caseURL := appURL + "/cases/" + h.CaseID

		delivered := 0
		for _, to := range autoreply.Recipients(h.Case, h, "", "") {
			if err := sender.SendHearingReminder(ctx, h.Case, h, to, caseURL); err != nil {
				zap.S().Warnw("Failed to send hearing reminder", "hearing_id", h.ID, "recipient", to.Email, "error", err)
				continue
			}
			delivered++
		}
		if delivered == 0 {
			continue
		}

		sentAt := time.Now().UTC()
		if err := database.WithContext(ctx).Model(h).Update("reminder_sent_at", sentAt).Error; err != nil {
			zap.S().Errorw("Failed to mark hearing reminded", "hearing_id", h.ID, "error", err)
			continue
		}
		reminded++
		zap.S().Infow("Sent hearing reminder", "hearing_id", h.ID, "recipients", delivered)
	}

	zap.S().Info("Hearing reminder job completed")
	return reminded
}
