package jobs

import (
	"context"
	"errors"
	"lexdesk/models"
	"lexdesk/services"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyMailer struct {
	failFor map[string]bool
	sent    []string
}

func (m *flakyMailer) Send(ctx context.Context, email *services.Email) error {
	if m.failFor[email.To[0]] {
		return errors.New("mailbox unavailable")
	}
	m.sent = append(m.sent, email.To[0])
	return nil
}

func TestRetryFailedNotifications(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	ledger := services.NewNotificationService(db)

	record := func(email string, attempts int) *models.Notification {
		n := &models.Notification{
			RecipientEmail: email,
			Kind:           models.NotificationKindNewMessage,
			Title:          "New message",
			Message:        "Bring the lease",
			Status:         models.NotificationStatusFailed,
			Attempts:       attempts,
			LastError:      "timeout",
		}
		require.NoError(t, db.Create(n).Error)
		return n
	}
	recovers := record("ana@example.com", 1)
	stillDown := record("luis@rivera.law", 2)
	exhausted := record("judy@court.gov", 3)

	mailer := &flakyMailer{failFor: map[string]bool{"luis@rivera.law": true}}
	notifier := services.NewEmailNotifier(mailer, ledger, "en")

	retried, delivered := RetryFailedNotifications(ctx, ledger, notifier, 3)
	assert.Equal(t, 2, retried)
	assert.Equal(t, 1, delivered)
	assert.Equal(t, []string{"ana@example.com"}, mailer.sent)

	load := func(id string) models.Notification {
		var n models.Notification
		require.NoError(t, db.First(&n, "id = ?", id).Error)
		return n
	}
	assert.Equal(t, models.NotificationStatusDelivered, load(recovers.ID).Status)

	down := load(stillDown.ID)
	assert.Equal(t, models.NotificationStatusFailed, down.Status)
	assert.Equal(t, 3, down.Attempts)
	assert.Equal(t, "mailbox unavailable", down.LastError)

	assert.Equal(t, 3, load(exhausted.ID).Attempts)

	t.Run("Nothing left to retry", func(t *testing.T) {
		retried, delivered := RetryFailedNotifications(ctx, ledger, notifier, 3)
		assert.Zero(t, retried)
		assert.Zero(t, delivered)
	})
}
