package services

import (
	"context"
	"errors"
	"fmt"
	"lexdesk/models"
	"strings"

	"gorm.io/gorm"
)

// ErrEmptyMessage is returned when a message has no content after sanitising.
var ErrEmptyMessage = errors.New("message content is empty")

// MaxMessageLength bounds stored message content.
const MaxMessageLength = 10000

type MessageService struct {
	DB *gorm.DB
}

func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{DB: db}
}

// CreateMessage inserts the message as a single unit: either the whole row is
// written or nothing is.
func (s *MessageService) CreateMessage(ctx context.Context, message *models.Message) error {
	if strings.TrimSpace(message.Content) == "" {
		return ErrEmptyMessage
	}
	if message.CaseID == "" || message.SenderID == "" {
		return fmt.Errorf("message requires case and sender")
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(message).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// ListCaseMessages returns the case-level conversation (no hearing scope),
// oldest first.
func (s *MessageService) ListCaseMessages(ctx context.Context, caseID string) ([]models.Message, error) {
	var messages []models.Message
	err := s.DB.WithContext(ctx).
		Preload("Sender").
		Where("case_id = ? AND hearing_id IS NULL", caseID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages for case %s: %w", caseID, err)
	}
	return messages, nil
}

// ListHearingMessages returns the conversation of a hearing, oldest first.
func (s *MessageService) ListHearingMessages(ctx context.Context, hearingID string) ([]models.Message, error) {
	var messages []models.Message
	err := s.DB.WithContext(ctx).
		Preload("Sender").
		Where("hearing_id = ?", hearingID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages for hearing %s: %w", hearingID, err)
	}
	return messages, nil
}

// ListAllCaseMessages returns every message of the case including hearing
// conversations, oldest first.
func (s *MessageService) ListAllCaseMessages(ctx context.Context, caseID string) ([]models.Message, error) {
	var messages []models.Message
	err := s.DB.WithContext(ctx).
		Preload("Sender").
		Where("case_id = ?", caseID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages for case %s: %w", caseID, err)
	}
	return messages, nil
}
