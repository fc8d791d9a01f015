package services

import (
	"context"
	"errors"
	"lexdesk/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationService(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNotificationService(db)
	ctx := context.Background()

	userID := "user-1"
	otherID := "user-2"

	t.Run("Record and Get Unread", func(t *testing.T) {
		err := svc.Record(ctx, &models.Notification{
			UserID:         &userID,
			RecipientEmail: "user1@example.com",
			Kind:           models.NotificationKindNewMessage,
			Title:          "Test",
			Message:        "Message",
		})
		assert.NoError(t, err)

		notifications, err := svc.GetUnreadNotifications(ctx, userID)
		assert.NoError(t, err)
		assert.Len(t, notifications, 1)
		assert.Equal(t, "Test", notifications[0].Title)
		assert.Equal(t, models.NotificationStatusPending, notifications[0].Status)

		count, _ := svc.GetNotificationCount(ctx, userID)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Mark as Read", func(t *testing.T) {
		var n models.Notification
		db.First(&n)

		err := svc.MarkAsRead(ctx, n.ID, otherID)
		assert.True(t, errors.Is(err, ErrNotFound))

		err = svc.MarkAsRead(ctx, n.ID, userID)
		assert.NoError(t, err)

		count, _ := svc.GetNotificationCount(ctx, userID)
		assert.Equal(t, int64(0), count)
	})

	t.Run("Mark All as Read", func(t *testing.T) {
		svc.Record(ctx, &models.Notification{UserID: &userID, RecipientEmail: "user1@example.com", Kind: models.NotificationKindNewMessage, Title: "A"})
		svc.Record(ctx, &models.Notification{UserID: &userID, RecipientEmail: "user1@example.com", Kind: models.NotificationKindNewMessage, Title: "B"})
		svc.Record(ctx, &models.Notification{UserID: &otherID, RecipientEmail: "user2@example.com", Kind: models.NotificationKindNewMessage, Title: "C"})

		count, _ := svc.GetNotificationCount(ctx, userID)
		assert.Equal(t, int64(2), count)

		err := svc.MarkAllAsRead(ctx, userID)
		assert.NoError(t, err)

		count, _ = svc.GetNotificationCount(ctx, userID)
		assert.Equal(t, int64(0), count)
		count, _ = svc.GetNotificationCount(ctx, otherID)
		assert.Equal(t, int64(1), count)

		all, err := svc.GetNotifications(ctx, userID, false, 10)
		assert.NoError(t, err)
		assert.Len(t, all, 3)
	})
}

func TestNotificationLedger(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNotificationService(db)
	ctx := context.Background()

	delivered := &models.Notification{RecipientEmail: "a@example.com", Kind: models.NotificationKindAutoReply, Title: "A"}
	failed := &models.Notification{RecipientEmail: "b@example.com", Kind: models.NotificationKindAutoReply, Title: "B"}
	exhausted := &models.Notification{RecipientEmail: "c@example.com", Kind: models.NotificationKindAutoReply, Title: "C"}
	for _, n := range []*models.Notification{delivered, failed, exhausted} {
		require.NoError(t, svc.Record(ctx, n))
	}

	require.NoError(t, svc.MarkDelivered(ctx, delivered.ID))
	require.NoError(t, svc.MarkFailed(ctx, failed.ID, errors.New("timeout")))
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.MarkFailed(ctx, exhausted.ID, errors.New("bounced")))
	}

	var reloaded models.Notification
	require.NoError(t, db.First(&reloaded, "id = ?", delivered.ID).Error)
	assert.True(t, reloaded.IsDelivered())
	assert.Equal(t, 1, reloaded.Attempts)
	assert.NotNil(t, reloaded.DeliveredAt)

	require.NoError(t, db.First(&reloaded, "id = ?", failed.ID).Error)
	assert.Equal(t, models.NotificationStatusFailed, reloaded.Status)
	assert.Equal(t, "timeout", reloaded.LastError)

	retryable, err := svc.ListRetryable(ctx, 3, 10)
	require.NoError(t, err)
	require.Len(t, retryable, 1)
	assert.Equal(t, failed.ID, retryable[0].ID)
}
