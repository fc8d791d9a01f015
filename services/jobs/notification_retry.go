package jobs

import (
	"context"
	"lexdesk/models"

	"go.uber.org/zap"
)

// RetryBatchSize caps how many failed notifications one sweep re-sends.
const RetryBatchSize = 50

// RetryLedger lists failed notifications that still have attempts left.
type RetryLedger interface {
	ListRetryable(ctx context.Context, maxAttempts, limit int) ([]models.Notification, error)
}

// Redeliverer re-sends a stored notification and records the attempt.
type Redeliverer interface {
	Redeliver(ctx context.Context, record *models.Notification) error
}

// RetryFailedNotifications re-sends failed notifications with fewer than
// maxAttempts attempts. It returns how many were retried and delivered.
func RetryFailedNotifications(ctx context.Context, ledger RetryLedger, sender Redeliverer, maxAttempts int) (retried, delivered int) {
	pending, err := ledger.ListRetryable(ctx, maxAttempts, RetryBatchSize)
	if err != nil {
		zap.S().Errorw("Error fetching notifications to retry", "error", err)
		return 0, 0
	}
	for i := range pending {
		retried++
		if err := sender.Redeliver(ctx, &pending[i]); err != nil {
			zap.S().Warnw("Notification retry failed",
				"notification_id", pending[i].ID,
				"attempt", pending[i].Attempts+1,
				"error", err,
			)
			continue
		}
		delivered++
	}
	if retried > 0 {
		zap.S().Infow("Notification retry sweep completed", "retried", retried, "delivered", delivered)
	}
	return retried, delivered
}
