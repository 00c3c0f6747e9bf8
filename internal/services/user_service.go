package services

import (
	"context"
	"errors"
	"time"

	"github.com/clockpro/backend/internal/models"
	"github.com/clockpro/backend/internal/realtime"
	mongorepo "github.com/clockpro/backend/internal/repositories/mongo"
	"github.com/clockpro/backend/internal/utils"
)

// PeriodTotals is a rollup of completed sessions for one time window.
type PeriodTotals struct {
	Sessions     int64 `json:"sessions"`
	FocusSeconds int64 `json:"focusSeconds"`
}

type StatsReport struct {
	Stored models.UserStats `json:"stored"`
	Total  PeriodTotals     `json:"total"`
	Today  PeriodTotals     `json:"today"`
	Week   PeriodTotals     `json:"week"`
}

type UserService interface {
	Profile(ctx context.Context, userID string) (*models.User, error)
	UpdateSettings(ctx context.Context, userID string, s models.UserSettings) (*models.User, error)
	Stats(ctx context.Context, userID string) (*StatsReport, error)
	UpdateWorldClocks(ctx context.Context, userID string, clocks []models.WorldClock) (*models.User, error)
	DeleteAccount(ctx context.Context, userID string) error
}

type userService struct {
	users    mongorepo.UserRepository
	sessions mongorepo.SessionRepository
	notifier Notifier
	now      func() time.Time
}

func NewUserService(users mongorepo.UserRepository, sessions mongorepo.SessionRepository, notifier Notifier) UserService {
	return &userService{
		users:    users,
		sessions: sessions,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *userService) Profile(ctx context.Context, userID string) (*models.User, error) {
	const op = "UserService.Profile"

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "user account no longer exists", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "unable to fetch user profile", err)
	}
	return user, nil
}

func (s *userService) UpdateSettings(ctx context.Context, userID string, settings models.UserSettings) (*models.User, error) {
	const op = "UserService.UpdateSettings"

	user, err := s.users.UpdateSettings(ctx, userID, settings)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "user account no longer exists", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "unable to update settings", err)
	}

	// Cross-device settings sync; losing the broadcast loses nothing durable.
	s.notifier.NotifyUser(userID, realtime.EventSettingsUpdated, user.Settings)
	return user, nil
}

func (s *userService) Stats(ctx context.Context, userID string) (*StatsReport, error) {
	const op = "UserService.Stats"

	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	startOfWeek := startOfDay.AddDate(0, 0, -int(startOfDay.Weekday()))

	report := &StatsReport{Stored: user.Stats}

	windows := []struct {
		since *time.Time
		dst   *PeriodTotals
	}{
		{nil, &report.Total},
		{&startOfDay, &report.Today},
		{&startOfWeek, &report.Week},
	}
	for _, w := range windows {
		count, focus, err := s.sessions.CompletedTotals(ctx, userID, w.since)
		if err != nil {
			return nil, utils.E(utils.CodeInternal, op, "unable to fetch user statistics", err)
		}
		w.dst.Sessions = count
		w.dst.FocusSeconds = focus
	}
	return report, nil
}

func (s *userService) UpdateWorldClocks(ctx context.Context, userID string, clocks []models.WorldClock) (*models.User, error) {
	const op = "UserService.UpdateWorldClocks"

	user, err := s.users.UpdateWorldClocks(ctx, userID, clocks)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "user account no longer exists", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "unable to update world clocks", err)
	}
	return user, nil
}

func (s *userService) DeleteAccount(ctx context.Context, userID string) error {
	const op = "UserService.DeleteAccount"

	// Sessions first so a crash between the two deletes cannot orphan them
	// behind a missing owner.
	if err := s.sessions.DeleteByUser(ctx, userID); err != nil {
		return utils.E(utils.CodeInternal, op, "unable to delete account", err)
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "user account no longer exists", err)
		}
		return utils.E(utils.CodeInternal, op, "unable to delete account", err)
	}
	return nil
}
