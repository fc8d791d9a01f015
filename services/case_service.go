package services

import (
	"context"
	"errors"
	"fmt"
	"lexdesk/models"
	"lexdesk/services/autoreply"
	"time"

	"gorm.io/gorm"
)

// ErrNotFound is returned by lookups when the record does not exist. It is the
// same value the auto-reply enricher checks for.
var ErrNotFound = autoreply.ErrNotFound

// CaseDirectory is the read-only lookup API over cases, hearings, documents
// and participants. It never mutates what it reads.
type CaseDirectory struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewCaseDirectory(db *gorm.DB) *CaseDirectory {
	return &CaseDirectory{DB: db, Now: time.Now}
}

func (d *CaseDirectory) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

// GetCaseByID loads a case with its client, assigned lawyer and firm.
func (d *CaseDirectory) GetCaseByID(ctx context.Context, id string) (*models.Case, error) {
	var caseRecord models.Case
	err := d.DB.WithContext(ctx).
		Preload("Client").
		Preload("AssignedTo").
		Preload("Firm").
		First(&caseRecord, "id = ?", id).Error
	if err != nil {
		return nil, wrapLookupError("case", id, err)
	}
	return &caseRecord, nil
}

// GetHearingByID loads a hearing with its judge.
func (d *CaseDirectory) GetHearingByID(ctx context.Context, id string) (*models.Hearing, error) {
	var hearing models.Hearing
	err := d.DB.WithContext(ctx).
		Preload("Judge").
		First(&hearing, "id = ?", id).Error
	if err != nil {
		return nil, wrapLookupError("hearing", id, err)
	}
	return &hearing, nil
}

// GetUserByID loads a participant.
func (d *CaseDirectory) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := d.DB.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, wrapLookupError("user", id, err)
	}
	return &user, nil
}

// ListUpcomingHearings returns up to limit scheduled or postponed hearings of
// the case that start after now, nearest first.
func (d *CaseDirectory) ListUpcomingHearings(ctx context.Context, caseID string, limit int) ([]models.Hearing, error) {
	var hearings []models.Hearing
	if limit <= 0 {
		return hearings, nil
	}
	err := d.DB.WithContext(ctx).
		Preload("Judge").
		Where("case_id = ?", caseID).
		Where("status IN ?", []string{models.HearingStatusScheduled, models.HearingStatusPostponed}).
		Where("scheduled_at > ?", d.now()).
		Order("scheduled_at ASC").
		Limit(limit).
		Find(&hearings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming hearings for case %s: %w", caseID, err)
	}
	return hearings, nil
}

// ListRecentDocuments returns up to limit documents of the case, newest first.
func (d *CaseDirectory) ListRecentDocuments(ctx context.Context, caseID string, limit int) ([]models.CaseDocument, error) {
	var documents []models.CaseDocument
	if limit <= 0 {
		return documents, nil
	}
	err := d.DB.WithContext(ctx).
		Where("case_id = ?", caseID).
		Order("created_at DESC").
		Limit(limit).
		Find(&documents).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list documents for case %s: %w", caseID, err)
	}
	return documents, nil
}

// IsCaseParticipant reports whether the user may read and write the case
// conversation: its client, its assigned lawyer, or an admin.
func IsCaseParticipant(user *models.User, caseRecord *models.Case) bool {
	if user == nil || caseRecord == nil {
		return false
	}
	if user.IsAdmin() {
		return true
	}
	if caseRecord.ClientID == user.ID {
		return true
	}
	return caseRecord.AssignedToID != nil && *caseRecord.AssignedToID == user.ID
}

// IsHearingParticipant extends IsCaseParticipant with the hearing's judge.
func IsHearingParticipant(user *models.User, caseRecord *models.Case, hearing *models.Hearing) bool {
	if IsCaseParticipant(user, caseRecord) {
		return true
	}
	return user != nil && hearing != nil && hearing.JudgeID != nil && *hearing.JudgeID == user.ID
}

func wrapLookupError(kind, id string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return fmt.Errorf("failed to fetch %s %s: %w", kind, id, err)
}
