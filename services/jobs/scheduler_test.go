package jobs

import (
	"lexdesk/config"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler(t *testing.T) {
	db := setupTestDB(t)

	t.Run("Registers reminder job only", func(t *testing.T) {
		cfg := &config.Config{HearingReminderSchedule: "0 * * * *", NotificationRetrySchedule: "*/10 * * * *"}
		s := NewScheduler(db, cfg, nil, nil)
		require.NoError(t, s.Start())
		defer s.Stop()
		assert.Len(t, s.cron.Entries(), 1)
	})

	t.Run("Registers retry job when enabled", func(t *testing.T) {
		cfg := &config.Config{
			HearingReminderSchedule:   "0 * * * *",
			NotificationRetryEnabled:  true,
			NotificationRetrySchedule: "*/10 * * * *",
		}
		s := NewScheduler(db, cfg, nil, nil)
		require.NoError(t, s.Start())
		defer s.Stop()
		assert.Len(t, s.cron.Entries(), 2)
	})

	t.Run("Rejects invalid schedule", func(t *testing.T) {
		s := NewScheduler(db, &config.Config{HearingReminderSchedule: "not a schedule"}, nil, nil)
		assert.Error(t, s.Start())
	})
}
