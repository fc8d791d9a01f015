package services

import (
	"lexdesk/models"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Unique shared in-memory database per test so pooled connections see the same data
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, testDB.AutoMigrate(models.All()...))
	return testDB
}

type seededCase struct {
	Firm    models.Firm
	Client  models.User
	Lawyer  models.User
	Judge   models.User
	Case    models.Case
	Hearing models.Hearing
}

func seedCase(t *testing.T, db *gorm.DB) *seededCase {
	t.Helper()
	s := &seededCase{}

	s.Firm = models.Firm{Name: "Rivera & Associates", Timezone: "America/New_York", InfoEmail: "info@rivera.law", HourlyRate: 150, Currency: "USD"}
	require.NoError(t, db.Create(&s.Firm).Error)

	s.Client = models.User{Name: "Ana Client", Email: "ana@example.com", Role: models.RoleClient, FirmID: &s.Firm.ID, Language: "en"}
	s.Lawyer = models.User{Name: "Luis Lawyer", Email: "luis@rivera.law", Role: models.RoleLawyer, FirmID: &s.Firm.ID, Phone: "+1 555 0101"}
	s.Judge = models.User{Name: "Judy Judge", Email: "judy@court.gov", Role: models.RoleJudge}
	require.NoError(t, db.Create(&s.Client).Error)
	require.NoError(t, db.Create(&s.Lawyer).Error)
	require.NoError(t, db.Create(&s.Judge).Error)

	title := "Rental dispute"
	s.Case = models.Case{
		FirmID:       &s.Firm.ID,
		ClientID:     s.Client.ID,
		CaseNumber:   "2025-0042",
		Title:        &title,
		Status:       models.CaseStatusOpen,
		AssignedToID: &s.Lawyer.ID,
	}
	require.NoError(t, db.Omit("Client", "AssignedTo", "Firm").Create(&s.Case).Error)

	s.Hearing = models.Hearing{
		CaseID:          s.Case.ID,
		ScheduledAt:     time.Now().Add(72 * time.Hour).UTC().Truncate(time.Second),
		DurationMinutes: 60,
		Location:        "Courtroom 4B",
		Status:          models.HearingStatusScheduled,
		JudgeID:         &s.Judge.ID,
	}
	require.NoError(t, db.Omit("Judge", "Case").Create(&s.Hearing).Error)

	return s
}
