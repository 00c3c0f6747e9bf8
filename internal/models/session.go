package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session types: the stored type collapses work to "pomodoro" and every
// break flavor to "break"; the sub type keeps what the client asked for.
const (
	TypePomodoro = "pomodoro"
	TypeBreak    = "break"
	TypeFocus    = "focus"

	SubTypeWork       = "work"
	SubTypeShortBreak = "short_break"
	SubTypeLongBreak  = "long_break"
	SubTypeCustom     = "custom"
)

// Planned duration bounds for a start, in seconds.
const (
	MinPlannedDuration = 60
	MaxPlannedDuration = 3600
)

type Session struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID string             `bson:"user_id" json:"user_id"`

	Type    string `bson:"type" json:"type"`         // pomodoro|break|focus
	SubType string `bson:"sub_type" json:"sub_type"` // work|short_break|long_break|custom

	StartTime time.Time  `bson:"start_time" json:"start_time"`
	EndTime   *time.Time `bson:"end_time" json:"end_time,omitempty"` // nil == active

	PlannedDuration int `bson:"planned_duration" json:"planned_duration"` // seconds
	ActualDuration  int `bson:"actual_duration,omitempty" json:"actual_duration,omitempty"`
	PausedTime      int `bson:"paused_time" json:"paused_time"` // accumulated seconds

	Completed   bool `bson:"completed" json:"completed"`
	Interrupted bool `bson:"interrupted" json:"interrupted"`

	Productivity *int        `bson:"productivity,omitempty" json:"productivity,omitempty"` // 1..5
	Data         SessionData `bson:"data,omitempty" json:"data,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

type SessionData struct {
	Task               string `bson:"task,omitempty" json:"task,omitempty"`
	Notes              string `bson:"notes,omitempty" json:"notes,omitempty"`
	AmbientSound       string `bson:"ambient_sound,omitempty" json:"ambient_sound,omitempty"`
	InterruptionReason string `bson:"interruption_reason,omitempty" json:"interruption_reason,omitempty"`
}

// Active reports whether the session has not reached a terminal state.
func (s *Session) Active() bool { return s.EndTime == nil }

// Elapsed is the focus time so far in whole seconds, paused time excluded.
func (s *Session) Elapsed(now time.Time) int {
	e := int(now.Sub(s.StartTime).Seconds()) - s.PausedTime
	if e < 0 {
		return 0
	}
	return e
}

// Remaining is the planned time left in seconds, floored at zero.
func (s *Session) Remaining(now time.Time) int {
	r := s.PlannedDuration - s.Elapsed(now)
	if r < 0 {
		return 0
	}
	return r
}
