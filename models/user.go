package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Participant roles
const (
	RoleClient = "client"
	RoleLawyer = "lawyer"
	RoleJudge  = "judge"
	RoleAdmin  = "admin"
)

// User is a participant identity: clients, lawyers, judges and admins share
// this table and are told apart by Role.
type User struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name     string  `gorm:"not null" json:"name"`
	Email    string  `gorm:"uniqueIndex;not null" json:"email"`
	Phone    string  `json:"phone,omitempty"`
	FirmID   *string `gorm:"type:uuid;index" json:"firm_id"`
	Role     string  `gorm:"not null;default:client" json:"role"`
	Language string  `gorm:"size:5" json:"language,omitempty"` // en, es
	IsActive bool    `gorm:"not null;default:true" json:"is_active"`

	// Relationships
	Firm *Firm `gorm:"foreignKey:FirmID" json:"firm,omitempty"`
}

// BeforeCreate hook to generate UUID
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

func (u *User) IsClient() bool { return u.Role == RoleClient }
func (u *User) IsLawyer() bool { return u.Role == RoleLawyer }
func (u *User) IsJudge() bool  { return u.Role == RoleJudge }
func (u *User) IsAdmin() bool  { return u.Role == RoleAdmin }

// IsValidRole checks if the role is one of the participant roles
func IsValidRole(role string) bool {
	switch role {
	case RoleClient, RoleLawyer, RoleJudge, RoleAdmin:
		return true
	}
	return false
}
