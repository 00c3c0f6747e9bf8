package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clockpro/backend/internal/logger"
	"github.com/clockpro/backend/internal/models"
	"github.com/clockpro/backend/internal/utils"
)

type userFixture struct {
	svc      *userService
	users    *memUserRepo
	sessions *fakeSessionRepo
	notifier *recordingNotifier
	userID   string
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	f := &userFixture{
		users:    newMemUserRepo(),
		sessions: &fakeSessionRepo{},
		notifier: &recordingNotifier{},
	}
	u := &models.User{Email: "a@b.com", Name: "Alice", Settings: models.DefaultSettings()}
	require.NoError(t, f.users.Create(context.Background(), u))
	f.userID = u.ID.Hex()

	f.svc = NewUserService(f.users, f.sessions, f.notifier).(*userService)
	return f
}

func TestProfile(t *testing.T) {
	f := newUserFixture(t)

	user, err := f.svc.Profile(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", user.Email)

	_, err = f.svc.Profile(context.Background(), "652d9f000000000000000000")
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
}

func TestUpdateSettings_BroadcastsToConnections(t *testing.T) {
	f := newUserFixture(t)

	settings := models.DefaultSettings()
	settings.Theme = "dark"
	settings.Pomodoro.WorkDuration = 50

	user, err := f.svc.UpdateSettings(context.Background(), f.userID, settings)
	require.NoError(t, err)
	assert.Equal(t, "dark", user.Settings.Theme)
	assert.Equal(t, 50, user.Settings.Pomodoro.WorkDuration)

	assert.Equal(t, []string{"settings_updated"}, f.notifier.events)
}

func TestStats_WindowedTotals(t *testing.T) {
	f := newUserFixture(t)

	// Wednesday; the week window starts the preceding Sunday.
	now := time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	pomo := NewPomodoroService(f.sessions, f.users, f.notifier, logger.New()).(*pomodoroService)
	clock := now.AddDate(0, 0, -10) // before this week
	pomo.now = func() time.Time { return clock }

	complete := func(dur int) {
		_, err := pomo.Start(context.Background(), f.userID, StartInput{Type: "work", Duration: dur})
		require.NoError(t, err)
		clock = clock.Add(time.Duration(dur) * time.Second)
		_, err = pomo.Complete(context.Background(), f.userID, nil, "")
		require.NoError(t, err)
	}

	// 10 days ago
	complete(1500)
	// Monday of the same week
	clock = now.AddDate(0, 0, -2)
	complete(1200)
	// earlier today
	clock = now.Add(-time.Hour)
	complete(600)

	report, err := f.svc.Stats(context.Background(), f.userID)
	require.NoError(t, err)

	assert.Equal(t, int64(3), report.Total.Sessions)
	assert.Equal(t, int64(3300), report.Total.FocusSeconds)
	assert.Equal(t, int64(2), report.Week.Sessions)
	assert.Equal(t, int64(1800), report.Week.FocusSeconds)
	assert.Equal(t, int64(1), report.Today.Sessions)
	assert.Equal(t, int64(600), report.Today.FocusSeconds)

	// The stored counters were incremented by each completion.
	assert.Equal(t, 3, report.Stored.TotalSessions)
	assert.Equal(t, 25+20+10, report.Stored.TotalFocusTime)
}

func TestUpdateWorldClocks(t *testing.T) {
	f := newUserFixture(t)

	clocks := []models.WorldClock{
		{City: "Tokyo", Country: "Japan", Timezone: "Asia/Tokyo"},
		{City: "Berlin", Timezone: "Europe/Berlin"},
	}
	user, err := f.svc.UpdateWorldClocks(context.Background(), f.userID, clocks)
	require.NoError(t, err)
	assert.Equal(t, clocks, user.WorldClocks)
}

func TestDeleteAccount_RemovesSessionsToo(t *testing.T) {
	f := newUserFixture(t)

	pomo := NewPomodoroService(f.sessions, f.users, f.notifier, logger.New())
	_, err := pomo.Start(context.Background(), f.userID, StartInput{Type: "work", Duration: 1500})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteAccount(context.Background(), f.userID))

	_, err = f.svc.Profile(context.Background(), f.userID)
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
	_, err = f.sessions.FindActive(context.Background(), f.userID)
	assert.ErrorIs(t, err, utils.ErrNotFound)

	err = f.svc.DeleteAccount(context.Background(), f.userID)
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
}
