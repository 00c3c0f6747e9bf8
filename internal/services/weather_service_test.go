package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clockpro/backend/internal/logger"
	"github.com/clockpro/backend/internal/models"
	"github.com/clockpro/backend/internal/providers/weather"
	"github.com/clockpro/backend/internal/utils"
)

type fakeCache struct {
	entries map[string][]byte
	getErr  error
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (c *fakeCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	if c.getErr != nil {
		return false, c.getErr
	}
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *fakeCache) SetJSON(_ context.Context, key string, val any, _ time.Duration) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	c.sets++
	return nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

type fakeWeatherRepo struct {
	fresh *models.WeatherCache
	saved []*models.WeatherCache
}

func (r *fakeWeatherRepo) FindFresh(context.Context, float64, float64, string) (*models.WeatherCache, error) {
	if r.fresh == nil {
		return nil, utils.ErrNotFound
	}
	return r.fresh, nil
}

func (r *fakeWeatherRepo) Save(_ context.Context, w *models.WeatherCache) error {
	r.saved = append(r.saved, w)
	return nil
}

type fakeProvider struct {
	report   *weather.Report
	forecast *weather.Forecast
	cities   []weather.City
	err      error

	calls         int
	forecastSlots int
	geocodeQuery  string
	geocodeLimit  int
}

func (p *fakeProvider) Current(context.Context, float64, float64, string) (*weather.Report, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.report, nil
}

func (p *fakeProvider) Forecast(_ context.Context, _, _ float64, _ string, maxSlots int) (*weather.Forecast, error) {
	p.forecastSlots = maxSlots
	if p.err != nil {
		return nil, p.err
	}
	return p.forecast, nil
}

func (p *fakeProvider) Geocode(_ context.Context, query string, limit int) ([]weather.City, error) {
	p.geocodeQuery = query
	p.geocodeLimit = limit
	if p.err != nil {
		return nil, p.err
	}
	return p.cities, nil
}

func berlinReport() *weather.Report {
	return &weather.Report{
		Location: models.WeatherLocation{City: "Berlin", Country: "DE", Lat: 52.52, Lon: 13.405},
		Current: models.WeatherCurrent{
			Temperature: 22,
			Condition:   models.WeatherCondition{Main: "Clouds"},
			Timestamp:   time.Now().UTC(),
		},
		Source: "openweather",
	}
}

func TestWeatherCurrent_ProviderPathPopulatesCaches(t *testing.T) {
	c := newFakeCache()
	repo := &fakeWeatherRepo{}
	p := &fakeProvider{report: berlinReport()}
	svc := NewWeatherService(p, repo, c, logger.New())

	res, err := svc.Current(context.Background(), 52.52, 13.405, "metric")
	require.NoError(t, err)

	assert.False(t, res.Cached)
	assert.Equal(t, "Berlin", res.Location.City)
	assert.Equal(t, 22, res.Weather.Temperature)

	require.Len(t, repo.saved, 1)
	assert.Equal(t, "metric", repo.saved[0].Units)
	assert.True(t, repo.saved[0].ExpiresAt.After(repo.saved[0].CachedAt))
	assert.Equal(t, 1, c.sets)
}

func TestWeatherCurrent_RedisHitSkipsEverythingElse(t *testing.T) {
	c := newFakeCache()
	p := &fakeProvider{report: berlinReport()}
	svc := NewWeatherService(p, &fakeWeatherRepo{}, c, logger.New())

	_, err := svc.Current(context.Background(), 52.52, 13.405, "metric")
	require.NoError(t, err)
	require.Equal(t, 1, p.calls)

	res, err := svc.Current(context.Background(), 52.52, 13.405, "metric")
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Equal(t, "Berlin", res.Location.City)
	assert.Equal(t, 1, p.calls, "provider must not be called on a cache hit")
}

func TestWeatherCurrent_MongoFallbackBackfillsRedis(t *testing.T) {
	c := newFakeCache()
	repo := &fakeWeatherRepo{fresh: &models.WeatherCache{
		Location: models.WeatherLocation{City: "Berlin"},
		Current:  models.WeatherCurrent{Temperature: 20},
		Units:    "metric",
	}}
	p := &fakeProvider{report: berlinReport()}
	svc := NewWeatherService(p, repo, c, logger.New())

	res, err := svc.Current(context.Background(), 52.52, 13.405, "metric")
	require.NoError(t, err)

	assert.True(t, res.Cached)
	assert.Equal(t, 20, res.Weather.Temperature)
	assert.Equal(t, 0, p.calls)
	assert.Equal(t, 1, c.sets)
}

func TestWeatherCurrent_RedisFailureDegradesToProvider(t *testing.T) {
	c := newFakeCache()
	c.getErr = errors.New("redis down")
	p := &fakeProvider{report: berlinReport()}
	svc := NewWeatherService(p, &fakeWeatherRepo{}, c, logger.New())

	res, err := svc.Current(context.Background(), 52.52, 13.405, "metric")
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, 1, p.calls)
}

func TestWeatherCurrent_ValidatesCoordinates(t *testing.T) {
	svc := NewWeatherService(&fakeProvider{}, &fakeWeatherRepo{}, newFakeCache(), logger.New())

	for _, c := range [][2]float64{{91, 0}, {-91, 0}, {0, 181}, {0, -181}} {
		_, err := svc.Current(context.Background(), c[0], c[1], "metric")
		require.Error(t, err)
		assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
	}
}

func TestWeatherCurrent_ProviderErrorPassedThrough(t *testing.T) {
	p := &fakeProvider{err: utils.E(utils.CodeUnavailable, "OpenWeather.Current", "weather service is not configured", nil)}
	svc := NewWeatherService(p, &fakeWeatherRepo{}, newFakeCache(), logger.New())

	_, err := svc.Current(context.Background(), 52.52, 13.405, "metric")
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeUnavailable))
}

func TestWeatherByCity_GeocodesAndServesCurrent(t *testing.T) {
	p := &fakeProvider{
		cities: []weather.City{{Name: "Berlin", Country: "DE", Lat: 52.52, Lon: 13.405}},
		report: berlinReport(),
	}
	svc := NewWeatherService(p, &fakeWeatherRepo{}, newFakeCache(), logger.New())

	res, err := svc.ByCity(context.Background(), "Berlin", "metric")
	require.NoError(t, err)

	assert.Equal(t, "Berlin", p.geocodeQuery)
	assert.Equal(t, 1, p.geocodeLimit)
	assert.Equal(t, "Berlin", res.Location.City)
	assert.Equal(t, 1, p.calls, "must flow through the coordinate path")

	// Second lookup hits the coordinate cache populated by the first.
	res, err = svc.ByCity(context.Background(), "Berlin", "metric")
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Equal(t, 1, p.calls)
}

func TestWeatherByCity_Errors(t *testing.T) {
	p := &fakeProvider{}
	svc := NewWeatherService(p, &fakeWeatherRepo{}, newFakeCache(), logger.New())

	_, err := svc.ByCity(context.Background(), "  ", "metric")
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	// Geocoder found nothing.
	_, err = svc.ByCity(context.Background(), "Atlantis", "metric")
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
}

func forecastHour(at time.Time, temp, humidity int, precipitation float64) weather.ForecastHour {
	return weather.ForecastHour{
		Time:          at,
		Temperature:   temp,
		FeelsLike:     temp - 1,
		Humidity:      humidity,
		Precipitation: precipitation,
		Condition:     models.WeatherCondition{Main: "Clouds"},
	}
}

func TestWeatherForecast_DailyRollup(t *testing.T) {
	day1 := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	hours := []weather.ForecastHour{
		forecastHour(day1.Add(9*time.Hour), 10, 60, 0),
		forecastHour(day1.Add(12*time.Hour), 14, 50, 0.4),
		forecastHour(day1.Add(15*time.Hour), 13, 40, 0.6),
		forecastHour(day2.Add(12*time.Hour), 8, 80, 2),
	}
	hours[1].Condition = models.WeatherCondition{Main: "Clear"}

	p := &fakeProvider{forecast: &weather.Forecast{
		Location: models.WeatherLocation{City: "Berlin", Country: "DE"},
		Hours:    hours,
	}}
	svc := NewWeatherService(p, &fakeWeatherRepo{}, newFakeCache(), logger.New())

	report, err := svc.Forecast(context.Background(), 52.52, 13.405, "metric", 2)
	require.NoError(t, err)

	assert.Equal(t, 16, p.forecastSlots) // 2 days * 8 slots
	assert.Len(t, report.Hourly, 4)

	require.Len(t, report.Daily, 2)
	d1 := report.Daily[0]
	assert.Equal(t, "2025-03-10", d1.Date)
	assert.Equal(t, TemperatureRange{Min: 10, Max: 14, Avg: 12}, d1.Temperature)
	assert.Equal(t, "Clear", d1.Condition.Main) // midday slot of three
	assert.Equal(t, 50, d1.Humidity)
	assert.Equal(t, 1.0, d1.Precipitation)

	d2 := report.Daily[1]
	assert.Equal(t, "2025-03-11", d2.Date)
	assert.Equal(t, TemperatureRange{Min: 8, Max: 8, Avg: 8}, d2.Temperature)
}

func TestWeatherForecast_ClampsDaysAndValidatesCoords(t *testing.T) {
	p := &fakeProvider{forecast: &weather.Forecast{
		Hours: []weather.ForecastHour{forecastHour(time.Now().UTC(), 10, 50, 0)},
	}}
	svc := NewWeatherService(p, &fakeWeatherRepo{}, newFakeCache(), logger.New())

	for _, days := range []int{0, -1, 6, 100} {
		_, err := svc.Forecast(context.Background(), 52.52, 13.405, "metric", days)
		require.NoError(t, err)
		assert.Equal(t, 40, p.forecastSlots, "days %d", days)
	}

	_, err := svc.Forecast(context.Background(), 91, 0, "metric", 5)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestWeatherSearchCities(t *testing.T) {
	p := &fakeProvider{cities: []weather.City{
		{Name: "Portland", State: "Oregon", Country: "US", Lat: 45.52, Lon: -122.67},
		{Name: "Portland", Country: "AU", Lat: -38.35, Lon: 141.6},
	}}
	svc := NewWeatherService(p, &fakeWeatherRepo{}, newFakeCache(), logger.New())

	cities, err := svc.SearchCities(context.Background(), "Port", 3)
	require.NoError(t, err)
	assert.Equal(t, "Port", p.geocodeQuery)
	assert.Equal(t, 3, p.geocodeLimit)

	require.Len(t, cities, 2)
	assert.Equal(t, "Portland, Oregon, US", cities[0].DisplayName)
	assert.Equal(t, CityCoordinates{Lat: 45.52, Lon: -122.67}, cities[0].Coordinates)
	assert.Equal(t, "Portland, AU", cities[1].DisplayName)

	_, err = svc.SearchCities(context.Background(), "P", 5)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	// Out-of-range limits fall back to the default.
	_, err = svc.SearchCities(context.Background(), "Port", 50)
	require.NoError(t, err)
	assert.Equal(t, 5, p.geocodeLimit)
}
