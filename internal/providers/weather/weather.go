package weather

import (
	"context"
	"time"

	"github.com/clockpro/backend/internal/models"
)

// Report is a normalized provider response; the service layers caching on top.
type Report struct {
	Location models.WeatherLocation
	Current  models.WeatherCurrent
	Source   string
}

// City is one geocoding match.
type City struct {
	Name    string
	State   string
	Country string
	Lat     float64
	Lon     float64
}

// ForecastHour is one 3-hour forecast slot, already normalized.
type ForecastHour struct {
	Time          time.Time
	Temperature   int
	FeelsLike     int
	Humidity      int
	Precipitation float64 // mm over the slot
	Condition     models.WeatherCondition
}

type Forecast struct {
	Location models.WeatherLocation
	Hours    []ForecastHour
}

type Provider interface {
	// Current fetches the current conditions for the coordinates. units is
	// "metric" or "imperial".
	Current(ctx context.Context, lat, lon float64, units string) (*Report, error)

	// Forecast fetches up to maxSlots 3-hourly entries for the coordinates.
	Forecast(ctx context.Context, lat, lon float64, units string, maxSlots int) (*Forecast, error)

	// Geocode resolves a free-form place query to candidate cities.
	Geocode(ctx context.Context, query string, limit int) ([]City, error)
}
