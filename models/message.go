package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message types
const (
	MessageTypeText = "text"
)

// Message is an append-only entry in a case conversation. A non-nil
// HearingID scopes it to that hearing's conversation.
type Message struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index:idx_message_case_created" json:"created_at"`

	CaseID    string  `gorm:"type:uuid;not null;index:idx_message_case_created" json:"case_id"`
	HearingID *string `gorm:"type:uuid;index" json:"hearing_id,omitempty"`

	SenderID string `gorm:"type:uuid;not null;index" json:"sender_id"`
	Sender   *User  `gorm:"foreignKey:SenderID" json:"sender,omitempty"`

	Content     string `gorm:"type:text;not null" json:"content"`
	MessageType string `gorm:"size:20;not null;default:text" json:"message_type"`

	IsAutoReply       bool    `gorm:"not null;default:false" json:"is_auto_reply"`
	ReplyToID         *string `gorm:"type:uuid" json:"reply_to_id,omitempty"`
	AutoReplyCategory string  `gorm:"size:40" json:"auto_reply_category,omitempty"`
}

// BeforeCreate hook to generate UUID and default the message type
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.MessageType == "" {
		m.MessageType = MessageTypeText
	}
	return nil
}

// TableName specifies the table name for Message model
func (Message) TableName() string {
	return "messages"
}
