package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	AuthProviderLocal = "local"
	AuthProviderGuest = "guest"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	Password     string             `bson:"password,omitempty" json:"-"` // bcrypt hash, never serialized
	Name         string             `bson:"name" json:"name"`
	AuthProvider string             `bson:"auth_provider" json:"auth_provider"` // local|guest

	Settings    UserSettings `bson:"settings" json:"settings"`
	WorldClocks []WorldClock `bson:"world_clocks,omitempty" json:"world_clocks,omitempty"`
	Stats       UserStats    `bson:"stats" json:"stats"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// UserSettings is replaced wholesale by PATCH /user/settings and synced to
// the user's other connections.
type UserSettings struct {
	Theme       string `bson:"theme" json:"theme"`             // light|dark|auto
	ColorScheme string `bson:"color_scheme" json:"colorScheme"`
	FontFamily  string `bson:"font_family" json:"fontFamily"`

	TimeFormat  string `bson:"time_format" json:"timeFormat"` // 12|24
	ShowSeconds bool   `bson:"show_seconds" json:"showSeconds"`
	Timezone    string `bson:"timezone" json:"timezone"` // IANA name or "auto"

	WeatherUnit string `bson:"weather_unit" json:"weatherUnit"` // celsius|fahrenheit
	WindUnit    string `bson:"wind_unit" json:"windUnit"`       // kmh|mph|ms
	ShowWeather bool   `bson:"show_weather" json:"showWeather"`

	Pomodoro PomodoroSettings `bson:"pomodoro" json:"pomodoro"`
}

// PomodoroSettings are client-side timer defaults, in minutes.
type PomodoroSettings struct {
	WorkDuration      int  `bson:"work_duration" json:"workDuration"`
	ShortBreak        int  `bson:"short_break" json:"shortBreak"`
	LongBreak         int  `bson:"long_break" json:"longBreak"`
	SessionsUntilLong int  `bson:"sessions_until_long" json:"sessionsUntilLong"`
	AutoStartBreaks   bool `bson:"auto_start_breaks" json:"autoStartBreaks"`
	SoundEnabled      bool `bson:"sound_enabled" json:"soundEnabled"`
}

func DefaultSettings() UserSettings {
	return UserSettings{
		Theme:       "auto",
		ColorScheme: "default",
		FontFamily:  "digital",
		TimeFormat:  "12",
		ShowSeconds: true,
		Timezone:    "auto",
		WeatherUnit: "celsius",
		WindUnit:    "kmh",
		ShowWeather: true,
		Pomodoro: PomodoroSettings{
			WorkDuration:      25,
			ShortBreak:        5,
			LongBreak:         15,
			SessionsUntilLong: 4,
			AutoStartBreaks:   false,
			SoundEnabled:      true,
		},
	}
}

type WorldClock struct {
	City     string `bson:"city" json:"city"`
	Country  string `bson:"country,omitempty" json:"country,omitempty"`
	Timezone string `bson:"timezone" json:"timezone"`
}

// UserStats counters are mutated only by the complete transition of a
// pomodoro session, as a single atomic increment.
type UserStats struct {
	TotalFocusTime     int        `bson:"total_focus_time" json:"totalFocusTime"` // minutes
	CompletedPomodoros int        `bson:"completed_pomodoros" json:"completedPomodoros"`
	TotalSessions      int        `bson:"total_sessions" json:"totalSessions"`
	LastSessionDate    *time.Time `bson:"last_session_date,omitempty" json:"lastSessionDate,omitempty"`
}

// StatsDelta is applied with $inc/$set by the user repository.
type StatsDelta struct {
	FocusMinutes       int
	CompletedPomodoros int
	Sessions           int
	LastSessionDate    time.Time
}
