package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/clockpro/backend/internal/cache"
	"github.com/clockpro/backend/internal/models"
	"github.com/clockpro/backend/internal/providers/weather"
	mongorepo "github.com/clockpro/backend/internal/repositories/mongo"
	"github.com/clockpro/backend/internal/utils"
)

const weatherTTL = 10 * time.Minute

type WeatherResult struct {
	Weather  models.WeatherCurrent  `json:"weather"`
	Location models.WeatherLocation `json:"location"`
	Cached   bool                   `json:"cached"`
}

type TemperatureRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
	Avg int `json:"avg"`
}

type HourForecast struct {
	Time          time.Time               `json:"time"`
	Temperature   int                     `json:"temperature"`
	FeelsLike     int                     `json:"feelsLike"`
	Humidity      int                     `json:"humidity"`
	Precipitation float64                 `json:"precipitation"`
	Condition     models.WeatherCondition `json:"condition"`
}

type DayForecast struct {
	Date          string                  `json:"date"` // YYYY-MM-DD, UTC
	Temperature   TemperatureRange        `json:"temperature"`
	Condition     models.WeatherCondition `json:"condition"` // midday slot
	Humidity      int                     `json:"humidity"`  // daily average
	Precipitation float64                 `json:"precipitation"`
}

type ForecastReport struct {
	Location models.WeatherLocation `json:"location"`
	Hourly   []HourForecast         `json:"hourly"`
	Daily    []DayForecast          `json:"daily"`
}

type CityCoordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type CityMatch struct {
	Name        string          `json:"name"`
	State       string          `json:"state,omitempty"`
	Country     string          `json:"country"`
	Coordinates CityCoordinates `json:"coordinates"`
	DisplayName string          `json:"displayName"`
}

type WeatherService interface {
	Current(ctx context.Context, lat, lon float64, units string) (*WeatherResult, error)

	// ByCity geocodes the city and serves the coordinate path, cache included.
	ByCity(ctx context.Context, city, units string) (*WeatherResult, error)

	// Forecast returns the 3-hourly outlook plus a per-day rollup. days is
	// clamped to 1..5.
	Forecast(ctx context.Context, lat, lon float64, units string, days int) (*ForecastReport, error)

	// SearchCities is autocomplete for the city picker; query must be at
	// least 2 characters.
	SearchCities(ctx context.Context, query string, limit int) ([]CityMatch, error)
}

// weatherService is a read-through chain: Redis -> Mongo TTL collection ->
// provider. Cache failures degrade to the next tier instead of failing the
// request.
type weatherService struct {
	provider weather.Provider
	repo     mongorepo.WeatherRepository
	cache    cache.Cache
	log      *logrus.Logger
}

func NewWeatherService(provider weather.Provider, repo mongorepo.WeatherRepository, c cache.Cache, log *logrus.Logger) WeatherService {
	return &weatherService{provider: provider, repo: repo, cache: c, log: log}
}

func weatherKey(lat, lon float64, units string) string {
	return cache.Key("weather", "current", fmt.Sprintf("%.4f:%.4f", lat, lon), units)
}

func validCoords(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func (s *weatherService) Current(ctx context.Context, lat, lon float64, units string) (*WeatherResult, error) {
	const op = "WeatherService.Current"

	if !validCoords(lat, lon) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "valid latitude and longitude are required", nil)
	}
	if units != "metric" && units != "imperial" {
		units = "metric"
	}

	key := weatherKey(lat, lon, units)

	var cached WeatherResult
	hit, err := s.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		s.log.WithError(err).Warn("weather cache read failed")
	}
	if hit {
		cached.Cached = true
		return &cached, nil
	}

	if doc, err := s.repo.FindFresh(ctx, lat, lon, units); err == nil {
		res := &WeatherResult{Weather: doc.Current, Location: doc.Location, Cached: true}
		if err := s.cache.SetJSON(ctx, key, res, weatherTTL); err != nil {
			s.log.WithError(err).Warn("weather cache backfill failed")
		}
		return res, nil
	} else if !errors.Is(err, utils.ErrNotFound) {
		s.log.WithError(err).Warn("weather cache lookup failed")
	}

	report, err := s.provider.Current(ctx, lat, lon, units)
	if err != nil {
		var ae *utils.AppError
		if errors.As(err, &ae) {
			return nil, err
		}
		return nil, utils.E(utils.CodeUnavailable, op, "weather service is temporarily unavailable", err)
	}

	now := time.Now().UTC()
	doc := &models.WeatherCache{
		Location:  report.Location,
		Current:   report.Current,
		Units:     units,
		Source:    report.Source,
		CachedAt:  now,
		ExpiresAt: now.Add(weatherTTL),
	}
	if err := s.repo.Save(ctx, doc); err != nil {
		s.log.WithError(err).Warn("weather cache save failed")
	}

	res := &WeatherResult{Weather: report.Current, Location: report.Location, Cached: false}
	if err := s.cache.SetJSON(ctx, key, res, weatherTTL); err != nil {
		s.log.WithError(err).Warn("weather cache write failed")
	}
	return res, nil
}

func (s *weatherService) ByCity(ctx context.Context, city, units string) (*WeatherResult, error) {
	const op = "WeatherService.ByCity"

	city = strings.TrimSpace(city)
	if city == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "city name is required", nil)
	}

	matches, err := s.provider.Geocode(ctx, city, 1)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, utils.E(utils.CodeNotFound, op,
			fmt.Sprintf("could not find weather data for %q", city), nil)
	}

	return s.Current(ctx, matches[0].Lat, matches[0].Lon, units)
}

const forecastSlotsPerDay = 8 // 3-hour slots

func (s *weatherService) Forecast(ctx context.Context, lat, lon float64, units string, days int) (*ForecastReport, error) {
	const op = "WeatherService.Forecast"

	if !validCoords(lat, lon) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "valid latitude and longitude are required", nil)
	}
	if units != "metric" && units != "imperial" {
		units = "metric"
	}
	if days < 1 || days > 5 {
		days = 5
	}

	fc, err := s.provider.Forecast(ctx, lat, lon, units, days*forecastSlotsPerDay)
	if err != nil {
		var ae *utils.AppError
		if errors.As(err, &ae) {
			return nil, err
		}
		return nil, utils.E(utils.CodeUnavailable, op, "weather service is temporarily unavailable", err)
	}

	hourly := make([]HourForecast, 0, len(fc.Hours))
	for _, h := range fc.Hours {
		hourly = append(hourly, HourForecast{
			Time:          h.Time,
			Temperature:   h.Temperature,
			FeelsLike:     h.FeelsLike,
			Humidity:      h.Humidity,
			Precipitation: h.Precipitation,
			Condition:     h.Condition,
		})
	}

	return &ForecastReport{
		Location: fc.Location,
		Hourly:   hourly,
		Daily:    rollupDaily(hourly),
	}, nil
}

// rollupDaily groups the hourly slots by UTC day: min/max/avg temperature,
// the midday slot's condition, averaged humidity, summed precipitation.
func rollupDaily(hours []HourForecast) []DayForecast {
	byDay := make(map[string][]HourForecast)
	for _, h := range hours {
		day := h.Time.UTC().Format("2006-01-02")
		byDay[day] = append(byDay[day], h)
	}

	days := make([]DayForecast, 0, len(byDay))
	for day, slots := range byDay {
		lo, hi, tempSum, humiditySum := slots[0].Temperature, slots[0].Temperature, 0, 0
		precipitation := 0.0
		for _, h := range slots {
			if h.Temperature < lo {
				lo = h.Temperature
			}
			if h.Temperature > hi {
				hi = h.Temperature
			}
			tempSum += h.Temperature
			humiditySum += h.Humidity
			precipitation += h.Precipitation
		}
		days = append(days, DayForecast{
			Date: day,
			Temperature: TemperatureRange{
				Min: lo,
				Max: hi,
				Avg: int(math.Round(float64(tempSum) / float64(len(slots)))),
			},
			Condition:     slots[len(slots)/2].Condition,
			Humidity:      int(math.Round(float64(humiditySum) / float64(len(slots)))),
			Precipitation: precipitation,
		})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}

func (s *weatherService) SearchCities(ctx context.Context, query string, limit int) ([]CityMatch, error) {
	const op = "WeatherService.SearchCities"

	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "search query must be at least 2 characters", nil)
	}
	if limit < 1 || limit > 10 {
		limit = 5
	}

	cities, err := s.provider.Geocode(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	out := make([]CityMatch, 0, len(cities))
	for _, c := range cities {
		display := c.Name
		if c.State != "" {
			display += ", " + c.State
		}
		display += ", " + c.Country
		out = append(out, CityMatch{
			Name:        c.Name,
			State:       c.State,
			Country:     c.Country,
			Coordinates: CityCoordinates{Lat: c.Lat, Lon: c.Lon},
			DisplayName: display,
		})
	}
	return out, nil
}
