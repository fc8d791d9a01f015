package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification kinds
const (
	NotificationKindAutoReply       = "AUTO_REPLY"
	NotificationKindNewMessage      = "NEW_MESSAGE"
	NotificationKindHearingReminder = "HEARING_REMINDER"
)

// Delivery statuses
const (
	NotificationStatusPending   = "PENDING"
	NotificationStatusDelivered = "DELIVERED"
	NotificationStatusFailed    = "FAILED"
)

// Notification records one email delivery attempt to one recipient. The same
// row backs the recipient's in-app inbox.
type Notification struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Targeting
	UserID         *string `gorm:"type:uuid;index" json:"user_id,omitempty"`
	RecipientEmail string  `gorm:"not null;index" json:"recipient_email"`

	// Context
	CaseID    *string `gorm:"type:uuid;index" json:"case_id,omitempty"`
	MessageID *string `gorm:"type:uuid;index" json:"message_id,omitempty"`

	// Content
	Kind     string `gorm:"size:30;not null" json:"kind"`
	Title    string `gorm:"not null" json:"title"`
	Message  string `gorm:"type:text" json:"message"`
	HTMLBody string `gorm:"type:text" json:"-"`
	LinkURL  string `json:"link_url,omitempty"`

	// Delivery
	Status      string     `gorm:"size:20;not null;default:PENDING;index" json:"status"`
	Attempts    int        `gorm:"not null;default:0" json:"attempts"`
	LastError   string     `gorm:"type:text" json:"last_error,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`

	// Read tracking
	ReadAt *time.Time `json:"read_at,omitempty"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.Status == "" {
		n.Status = NotificationStatusPending
	}
	return nil
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

func (n *Notification) IsDelivered() bool {
	return n.Status == NotificationStatusDelivered
}
