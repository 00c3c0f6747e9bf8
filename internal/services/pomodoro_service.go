package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/clockpro/backend/internal/models"
	"github.com/clockpro/backend/internal/realtime"
	mongorepo "github.com/clockpro/backend/internal/repositories/mongo"
	"github.com/clockpro/backend/internal/utils"
)

// Notifier pushes lifecycle events to a user's live connections. Calls are
// fire-and-forget: implementations must never fail the caller.
type Notifier interface {
	NotifyUser(userID, event string, payload any)
}

type StartInput struct {
	Type         string // work|short_break|long_break|custom
	Duration     int    // planned duration, seconds
	Task         string
	AmbientSound string
}

// ActiveSession is the derived view of the current session: elapsed and
// remaining are reconstructed from stored timestamps on every read, so no
// server-side timer has to tick.
type ActiveSession struct {
	Session   *models.Session
	Elapsed   int
	Remaining int
}

type HistoryQuery struct {
	Page     int
	Limit    int
	Type     string
	DateFrom *time.Time
	DateTo   *time.Time
}

type Pagination struct {
	CurrentPage   int   `json:"currentPage"`
	TotalPages    int   `json:"totalPages"`
	TotalSessions int64 `json:"totalSessions"`
	HasNext       bool  `json:"hasNext"`
	HasPrevious   bool  `json:"hasPrevious"`
}

type AnalyticsReport struct {
	Period    string
	Analytics []DailySummary
	Summary   AnalyticsSummary
}

type PomodoroService interface {
	Start(ctx context.Context, userID string, in StartInput) (*models.Session, error)
	Pause(ctx context.Context, userID string, pausedSeconds int) (totalPaused int, err error)
	Complete(ctx context.Context, userID string, productivity *int, notes string) (*models.Session, error)
	Stop(ctx context.Context, userID, reason string) (*models.Session, error)

	// Current returns (nil, nil) when the user has no active session.
	Current(ctx context.Context, userID string) (*ActiveSession, error)

	History(ctx context.Context, userID string, q HistoryQuery) ([]models.Session, Pagination, error)
	Analytics(ctx context.Context, userID, period string) (*AnalyticsReport, error)
}

type pomodoroService struct {
	sessions mongorepo.SessionRepository
	users    mongorepo.UserRepository
	notifier Notifier
	log      *logrus.Logger
	now      func() time.Time
}

func NewPomodoroService(sessions mongorepo.SessionRepository, users mongorepo.UserRepository, notifier Notifier, log *logrus.Logger) PomodoroService {
	return &pomodoroService{
		sessions: sessions,
		users:    users,
		notifier: notifier,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func validSubType(t string) bool {
	switch t {
	case models.SubTypeWork, models.SubTypeShortBreak, models.SubTypeLongBreak, models.SubTypeCustom:
		return true
	}
	return false
}

func (s *pomodoroService) Start(ctx context.Context, userID string, in StartInput) (*models.Session, error) {
	const op = "PomodoroService.Start"

	if in.Type == "" {
		in.Type = models.SubTypeWork
	}
	if !validSubType(in.Type) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "invalid session type", nil)
	}
	if in.Duration < models.MinPlannedDuration || in.Duration > models.MaxPlannedDuration {
		return nil, utils.E(utils.CodeInvalidArgument, op, "duration must be between 1 minute and 1 hour", nil)
	}
	if in.AmbientSound == "" {
		in.AmbientSound = "none"
	}

	typ := models.TypeBreak
	if in.Type == models.SubTypeWork {
		typ = models.TypePomodoro
	}

	session := &models.Session{
		UserID:          userID,
		Type:            typ,
		SubType:         in.Type,
		StartTime:       s.now(),
		PlannedDuration: in.Duration,
		Data: models.SessionData{
			Task:         in.Task,
			AmbientSound: in.AmbientSound,
		},
	}

	// No pre-check here: the store's partial unique index arbitrates
	// concurrent starts, so the insert itself is the conflict test.
	if err := s.sessions.Create(ctx, session); err != nil {
		if errors.Is(err, utils.ErrActiveSession) {
			return nil, utils.E(utils.CodeConflict, op, "please complete or stop your current session first", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "unable to start session", err)
	}

	s.notifier.NotifyUser(userID, realtime.EventPomodoroStarted, map[string]any{
		"id":              session.ID.Hex(),
		"type":            session.SubType,
		"startTime":       session.StartTime,
		"plannedDuration": session.PlannedDuration,
		"task":            session.Data.Task,
	})
	return session, nil
}

func (s *pomodoroService) Pause(ctx context.Context, userID string, pausedSeconds int) (int, error) {
	const op = "PomodoroService.Pause"

	// pausedTime only ever grows; a negative increment would let a client
	// rewind the accumulator.
	if pausedSeconds < 0 {
		return 0, utils.E(utils.CodeInvalidArgument, op, "paused time must not be negative", nil)
	}

	session, err := s.sessions.AddPausedTime(ctx, userID, pausedSeconds)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return 0, utils.E(utils.CodeNotFound, op, "no active session found to pause", err)
		}
		return 0, utils.E(utils.CodeInternal, op, "unable to record pause", err)
	}
	return session.PausedTime, nil
}

func (s *pomodoroService) Complete(ctx context.Context, userID string, productivity *int, notes string) (*models.Session, error) {
	const op = "PomodoroService.Complete"

	if productivity != nil && (*productivity < 1 || *productivity > 5) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "productivity rating must be between 1 and 5", nil)
	}

	session, err := s.sessions.EndActive(ctx, userID, mongorepo.EndActive{
		At:           s.now(),
		Completed:    true,
		Productivity: productivity,
		Notes:        notes,
	})
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "no active session found to complete", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "unable to complete session", err)
	}

	// Break sessions end without touching the counters.
	if session.Type == models.TypePomodoro {
		delta := models.StatsDelta{
			FocusMinutes:       session.ActualDuration / 60,
			CompletedPomodoros: 1,
			Sessions:           1,
			LastSessionDate:    *session.EndTime,
		}
		if err := s.users.IncrementStats(ctx, userID, delta); err != nil {
			return nil, utils.E(utils.CodeInternal, op, "unable to update statistics", err)
		}
	}

	s.notifier.NotifyUser(userID, realtime.EventPomodoroCompleted, map[string]any{
		"id":        session.ID.Hex(),
		"type":      session.SubType,
		"duration":  session.ActualDuration,
		"completed": true,
	})
	return session, nil
}

func (s *pomodoroService) Stop(ctx context.Context, userID, reason string) (*models.Session, error) {
	const op = "PomodoroService.Stop"

	if reason == "" {
		reason = "user_cancelled"
	}

	session, err := s.sessions.EndActive(ctx, userID, mongorepo.EndActive{
		At:        s.now(),
		Completed: false,
		Reason:    reason,
	})
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "no active session found to stop", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "unable to stop session", err)
	}

	// Interrupted sessions never count toward the completed-pomodoro stats.

	s.notifier.NotifyUser(userID, realtime.EventPomodoroStopped, map[string]any{
		"id":          session.ID.Hex(),
		"type":        session.SubType,
		"duration":    session.ActualDuration,
		"interrupted": true,
	})
	return session, nil
}

func (s *pomodoroService) Current(ctx context.Context, userID string) (*ActiveSession, error) {
	const op = "PomodoroService.Current"

	session, err := s.sessions.FindActive(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, nil
		}
		return nil, utils.E(utils.CodeInternal, op, "unable to fetch current session", err)
	}

	now := s.now()
	return &ActiveSession{
		Session:   session,
		Elapsed:   session.Elapsed(now),
		Remaining: session.Remaining(now),
	}, nil
}

func (s *pomodoroService) History(ctx context.Context, userID string, q HistoryQuery) ([]models.Session, Pagination, error) {
	const op = "PomodoroService.History"

	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 20
	}

	f := mongorepo.HistoryFilter{
		Page:     q.Page,
		Limit:    q.Limit,
		DateFrom: q.DateFrom,
		DateTo:   q.DateTo,
	}
	// The filter value is a sub type; anything else matches nothing and is
	// ignored rather than silently returning an empty history.
	if validSubType(q.Type) {
		f.SubType = q.Type
	}

	sessions, total, err := s.sessions.ListByUser(ctx, userID, f)
	if err != nil {
		return nil, Pagination{}, utils.E(utils.CodeInternal, op, "unable to fetch session history", err)
	}

	totalPages := int((total + int64(q.Limit) - 1) / int64(q.Limit))
	p := Pagination{
		CurrentPage:   q.Page,
		TotalPages:    totalPages,
		TotalSessions: total,
		HasNext:       int64((q.Page-1)*q.Limit+len(sessions)) < total,
		HasPrevious:   q.Page > 1,
	}
	return sessions, p, nil
}

func (s *pomodoroService) Analytics(ctx context.Context, userID, period string) (*AnalyticsReport, error) {
	const op = "PomodoroService.Analytics"

	end := s.now()
	var start time.Time
	switch period {
	case "month":
		start = time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	case "year":
		start = time.Date(end.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		period = "week"
		start = end.AddDate(0, 0, -7)
	}

	sessions, err := s.sessions.FindByUserAndRange(ctx, userID, start, end)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "unable to fetch productivity analytics", err)
	}

	days, summary := Summarize(sessions)
	return &AnalyticsReport{Period: period, Analytics: days, Summary: summary}, nil
}
