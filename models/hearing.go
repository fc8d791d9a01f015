package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Hearing status constants
const (
	HearingStatusScheduled = "SCHEDULED"
	HearingStatusPostponed = "POSTPONED"
	HearingStatusCompleted = "COMPLETED"
	HearingStatusCancelled = "CANCELLED"
)

// Hearing is a scheduled court session for a case. Scheduling owns it;
// messaging reads it for context and notification recipients.
type Hearing struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CaseID string `gorm:"type:uuid;not null;index:idx_hearing_case_scheduled" json:"case_id"`
	Case   *Case  `gorm:"foreignKey:CaseID" json:"case,omitempty"`

	ScheduledAt     time.Time `gorm:"not null;index:idx_hearing_case_scheduled" json:"scheduled_at"`
	DurationMinutes int       `gorm:"not null;default:60" json:"duration_minutes"`
	Location        string    `json:"location,omitempty"`
	Status          string    `gorm:"size:20;not null;default:SCHEDULED;index" json:"status"`

	JudgeID *string `gorm:"type:uuid;index" json:"judge_id,omitempty"`
	Judge   *User   `gorm:"foreignKey:JudgeID" json:"judge,omitempty"`

	ReminderSentAt *time.Time `json:"reminder_sent_at,omitempty"`
}

// BeforeCreate hook to generate UUID
func (h *Hearing) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Hearing model
func (Hearing) TableName() string {
	return "hearings"
}

// HasJudge reports whether a judge is assigned.
func (h *Hearing) HasJudge() bool {
	return h.JudgeID != nil && *h.JudgeID != "" && h.Judge != nil
}
