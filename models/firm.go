package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Firm struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name           string  `gorm:"not null" json:"name"`
	Country        string  `json:"country"`
	Timezone       string  `gorm:"not null;default:UTC" json:"timezone"`
	Phone          string  `json:"phone"`
	InfoEmail      string  `json:"info_email"`
	EmergencyPhone string  `json:"emergency_phone"`
	HourlyRate     float64 `gorm:"not null;default:0" json:"hourly_rate"`
	Currency       string  `gorm:"size:3" json:"currency"` // ISO 4217; derived from country when empty

	// Relationships
	Users []User `gorm:"foreignKey:FirmID" json:"-"`
}

// BeforeCreate hook to generate UUID
func (f *Firm) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Firm model
func (Firm) TableName() string {
	return "firms"
}

// Location returns the firm's time zone. An empty zone falls back to the
// country default, and anything unloadable to UTC.
func (f *Firm) Location() *time.Location {
	if f == nil {
		return time.UTC
	}
	name := f.Timezone
	if name == "" || name == "UTC" {
		if def := DefaultTimezone(f.Country); def != "" {
			name = def
		}
	}
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// CurrencyCode returns the firm's ISO 4217 currency, derived from the country
// when none was set.
func (f *Firm) CurrencyCode() string {
	if f == nil {
		return DefaultCurrency("")
	}
	if f.Currency != "" {
		return strings.ToUpper(f.Currency)
	}
	return DefaultCurrency(f.Country)
}

// DefaultTimezone returns the default timezone for a given country.
// Returns an empty string if no default is enforced.
func DefaultTimezone(country string) string {
	switch strings.ToLower(strings.TrimSpace(country)) {
	case "colombia":
		return "America/Bogota"
	case "mexico", "méxico":
		return "America/Mexico_City"
	case "spain", "españa":
		return "Europe/Madrid"
	}
	return ""
}

// DefaultCurrency returns the default currency for a given country.
// Returns "USD" as fallback if no specific default is defined.
func DefaultCurrency(country string) string {
	switch strings.ToLower(strings.TrimSpace(country)) {
	case "colombia":
		return "COP"
	case "mexico", "méxico":
		return "MXN"
	case "spain", "españa":
		return "EUR"
	}
	return "USD"
}
