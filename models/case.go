package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Case status constants
const (
	CaseStatusOpen   = "OPEN"
	CaseStatusOnHold = "ON_HOLD"
	CaseStatusClosed = "CLOSED"
)

// Case represents a legal case. It is owned by case management; messaging
// only reads it.
type Case struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	FirmID *string `gorm:"type:uuid;index" json:"firm_id,omitempty"`
	Firm   *Firm   `gorm:"foreignKey:FirmID" json:"firm,omitempty"`

	// Client relationship (User with role 'client')
	ClientID string `gorm:"type:uuid;not null;index" json:"client_id"`
	Client   User   `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	CaseNumber string    `gorm:"not null;uniqueIndex" json:"case_number"`
	Title      *string   `json:"title,omitempty"`
	Status     string    `gorm:"not null;default:OPEN;index" json:"status"`
	OpenedAt   time.Time `gorm:"not null" json:"opened_at"`

	// Assignment
	AssignedToID *string `gorm:"type:uuid;index" json:"assigned_to_id,omitempty"`
	AssignedTo   *User   `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`
}

// BeforeCreate hook to generate UUID and set OpenedAt
func (c *Case) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.OpenedAt.IsZero() {
		c.OpenedAt = time.Now()
	}
	return nil
}

// TableName specifies the table name for Case model
func (Case) TableName() string {
	return "cases"
}

// HasAssignedLawyer reports whether a lawyer is assigned to the case.
func (c *Case) HasAssignedLawyer() bool {
	return c.AssignedToID != nil && *c.AssignedToID != ""
}

// DisplayTitle returns the title, or the case number when no title was set.
func (c *Case) DisplayTitle() string {
	if c.Title != nil && *c.Title != "" {
		return *c.Title
	}
	return c.CaseNumber
}
