package services

import (
	"context"
	"fmt"
	"lexdesk/models"
	"time"

	"gorm.io/gorm"
)

// NotificationService is the delivery ledger for outbound notifications and
// the read side of each participant's inbox.
type NotificationService struct {
	DB *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

// Record stores a notification before its first delivery attempt.
func (s *NotificationService) Record(ctx context.Context, notification *models.Notification) error {
	if notification.Status == "" {
		notification.Status = models.NotificationStatusPending
	}
	if err := s.DB.WithContext(ctx).Create(notification).Error; err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}
	return nil
}

// MarkDelivered counts a successful attempt.
func (s *NotificationService) MarkDelivered(ctx context.Context, id string) error {
	now := time.Now()
	return s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       models.NotificationStatusDelivered,
			"attempts":     gorm.Expr("attempts + 1"),
			"delivered_at": now,
			"last_error":   "",
		}).Error
}

// MarkFailed counts a failed attempt and keeps the error for the retry job.
func (s *NotificationService) MarkFailed(ctx context.Context, id string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     models.NotificationStatusFailed,
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": msg,
		}).Error
}

// ListRetryable returns failed notifications that still have attempts left,
// oldest first.
func (s *NotificationService) ListRetryable(ctx context.Context, maxAttempts, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.DB.WithContext(ctx).
		Where("status = ? AND attempts < ?", models.NotificationStatusFailed, maxAttempts).
		Order("created_at ASC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

// GetNotifications returns the user's most recent notifications.
func (s *NotificationService) GetNotifications(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	query := s.DB.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}
	err := query.Order("created_at DESC").Limit(limit).Find(&notifications).Error
	return notifications, err
}

func (s *NotificationService) GetUnreadNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	return s.GetNotifications(ctx, userID, true, 5)
}

// MarkAsRead marks one of the user's notifications as read. It returns
// ErrNotFound when the notification is not the user's.
func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID, userID string) error {
	result := s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read_at", time.Now())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("notification %s: %w", notificationID, ErrNotFound)
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID string) error {
	return s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", time.Now()).Error
}

func (s *NotificationService) GetNotificationCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}
