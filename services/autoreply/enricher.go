package autoreply

import (
	"context"
	"errors"
	"lexdesk/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNotFound is what Directory implementations wrap when a record is missing.
var ErrNotFound = errors.New("record not found")

// Directory is the read-only lookup surface the enricher needs.
type Directory interface {
	GetCaseByID(ctx context.Context, id string) (*models.Case, error)
	GetHearingByID(ctx context.Context, id string) (*models.Hearing, error)
	ListUpcomingHearings(ctx context.Context, caseID string, limit int) ([]models.Hearing, error)
	ListRecentDocuments(ctx context.Context, caseID string, limit int) ([]models.CaseDocument, error)
}

// SkipReason explains why no auto-reply was produced.
type SkipReason string

const (
	SkipNone             SkipReason = ""
	SkipDisabled         SkipReason = "auto-reply-disabled"
	SkipSenderNotClient  SkipReason = "sender-not-client"
	SkipCaseNotFound     SkipReason = "case-not-found"
	SkipHearingNotFound  SkipReason = "hearing-not-found"
	SkipNoAssignedLawyer SkipReason = "no-assigned-lawyer"
)

// ReplyContext is everything the composer renders from.
type ReplyContext struct {
	Case             *models.Case
	Client           *models.User
	Lawyer           *models.User
	Firm             *models.Firm // may be nil
	Hearing          *models.Hearing
	UpcomingHearings []models.Hearing
	Documents        []models.CaseDocument
}

// HearingScoped reports whether the triggering message belongs to a hearing.
func (rc *ReplyContext) HearingScoped() bool {
	return rc.Hearing != nil
}

// Enrichment is either a found ReplyContext or a skip reason, never both.
type Enrichment struct {
	Context *ReplyContext
	Skip    SkipReason
}

func Found(rc *ReplyContext) Enrichment { return Enrichment{Context: rc} }

func Skipped(reason SkipReason) Enrichment { return Enrichment{Skip: reason} }

func (e Enrichment) IsFound() bool { return e.Context != nil }

// Enricher assembles a ReplyContext from the directory.
type Enricher struct {
	Directory     Directory
	UpcomingLimit int
	DocumentLimit int
}

func NewEnricher(dir Directory, upcomingLimit, documentLimit int) *Enricher {
	return &Enricher{Directory: dir, UpcomingLimit: upcomingLimit, DocumentLimit: documentLimit}
}

// Enrich loads the case, the optional hearing, upcoming hearings and recent
// documents concurrently. A missing case or hearing becomes a skip; any other
// failure of those two lookups is returned as an error.
func (e *Enricher) Enrich(ctx context.Context, caseID string, hearingID *string) (Enrichment, error) {
	var (
		caseRecord *models.Case
		hearing    *models.Hearing
		upcoming   []models.Hearing
		documents  []models.CaseDocument

		caseMissing    bool
		hearingMissing bool
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		c, err := e.Directory.GetCaseByID(gctx, caseID)
		if errors.Is(err, ErrNotFound) {
			caseMissing = true
			return nil
		}
		caseRecord = c
		return err
	})

	if hearingID != nil && *hearingID != "" {
		g.Go(func() error {
			h, err := e.Directory.GetHearingByID(gctx, *hearingID)
			if errors.Is(err, ErrNotFound) {
				hearingMissing = true
				return nil
			}
			hearing = h
			return err
		})
	}

	// Upcoming hearings and documents are optional: a failed read leaves the
	// section empty.
	g.Go(func() error {
		h, err := e.Directory.ListUpcomingHearings(gctx, caseID, e.UpcomingLimit)
		if err != nil {
			zap.S().Warnw("Upcoming hearings unavailable for auto-reply", "case_id", caseID, "error", err)
			return nil
		}
		upcoming = h
		return nil
	})

	g.Go(func() error {
		d, err := e.Directory.ListRecentDocuments(gctx, caseID, e.DocumentLimit)
		if err != nil {
			zap.S().Warnw("Documents unavailable for auto-reply", "case_id", caseID, "error", err)
			return nil
		}
		documents = d
		return nil
	})

	if err := g.Wait(); err != nil {
		return Enrichment{}, err
	}

	if caseMissing || caseRecord == nil {
		return Skipped(SkipCaseNotFound), nil
	}
	if hearingID != nil && *hearingID != "" {
		if hearingMissing || hearing == nil || hearing.CaseID != caseRecord.ID {
			return Skipped(SkipHearingNotFound), nil
		}
	}
	if !caseRecord.HasAssignedLawyer() || caseRecord.AssignedTo == nil {
		return Skipped(SkipNoAssignedLawyer), nil
	}

	client := caseRecord.Client
	return Found(&ReplyContext{
		Case:             caseRecord,
		Client:           &client,
		Lawyer:           caseRecord.AssignedTo,
		Firm:             caseRecord.Firm,
		Hearing:          hearing,
		UpcomingHearings: upcoming,
		Documents:        documents,
	}), nil
}
