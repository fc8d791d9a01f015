package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"lexdesk/config"
	"lexdesk/middleware"
	"lexdesk/models"
	"lexdesk/services"
	"net/http"
	"net/http/httptest"
	"sync"
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
	// Use unique shared memory name to isolate tests while allowing shared cache for the fan-out goroutines
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, testDB.AutoMigrate(models.All()...))
	return testDB
}

type capturingMailer struct {
	mu   sync.Mutex
	sent []*services.Email
}

func (m *capturingMailer) Send(ctx context.Context, email *services.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, email)
	return nil
}

func (m *capturingMailer) recipients() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, e := range m.sent {
		out = append(out, e.To...)
	}
	return out
}

type testEnv struct {
	DB       *gorm.DB
	App      *App
	Mailer   *capturingMailer
	Firm     models.Firm
	Client   models.User
	Lawyer   models.User
	Judge    models.User
	Stranger models.User
	Case     models.Case
	Hearing  models.Hearing

	router http.Handler
}

func testConfig() *config.Config {
	return &config.Config{
		Environment:            "test",
		AppURL:                 "https://app.lexdesk.test",
		DefaultLocale:          "en",
		AutoReplyEnabled:       true,
		AutoReplyUpcomingLimit: 3,
		AutoReplyDocumentLimit: 5,
		AllowedOrigins:         []string{"*"},
	}
}

func setupEnv(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()
	env := &testEnv{DB: setupTestDB(t), Mailer: &capturingMailer{}}
	db := env.DB

	env.Firm = models.Firm{Name: "Rivera & Associates", Timezone: "America/New_York", Phone: "+1 555 0100", HourlyRate: 150, Currency: "USD"}
	require.NoError(t, db.Create(&env.Firm).Error)

	env.Client = models.User{Name: "Ana Client", Email: "ana@example.com", Role: models.RoleClient, FirmID: &env.Firm.ID, Language: "en", IsActive: true}
	env.Lawyer = models.User{Name: "Luis Lawyer", Email: "luis@rivera.law", Role: models.RoleLawyer, FirmID: &env.Firm.ID, IsActive: true}
	env.Judge = models.User{Name: "Judy Judge", Email: "judy@court.gov", Role: models.RoleJudge, IsActive: true}
	env.Stranger = models.User{Name: "Sam Stranger", Email: "sam@example.com", Role: models.RoleClient, IsActive: true}
	for _, u := range []*models.User{&env.Client, &env.Lawyer, &env.Judge, &env.Stranger} {
		require.NoError(t, db.Create(u).Error)
	}

	env.Case = models.Case{
		FirmID:       &env.Firm.ID,
		ClientID:     env.Client.ID,
		CaseNumber:   "2025-0042",
		Status:       models.CaseStatusOpen,
		AssignedToID: &env.Lawyer.ID,
	}
	require.NoError(t, db.Omit("Client", "AssignedTo", "Firm").Create(&env.Case).Error)

	env.Hearing = models.Hearing{
		CaseID:          env.Case.ID,
		ScheduledAt:     time.Now().Add(72 * time.Hour).UTC(),
		DurationMinutes: 60,
		Location:        "Courtroom 4B",
		Status:          models.HearingStatusScheduled,
		JudgeID:         &env.Judge.ID,
	}
	require.NoError(t, db.Omit("Judge", "Case").Create(&env.Hearing).Error)

	env.App = NewApp(cfg, db, nil, env.Mailer)
	env.router = env.App.Router()
	return env
}

// do sends a request through the full router as user (nil for anonymous).
func (env *testEnv) do(t *testing.T, method, path string, user *models.User, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req.Header.Set(middleware.HeaderUserID, user.ID)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}
