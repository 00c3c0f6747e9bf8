package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/clockpro/backend/internal/models"
	"github.com/clockpro/backend/internal/utils"
)

const (
	openWeatherBaseURL = "https://api.openweathermap.org/data/2.5"
	openWeatherGeoURL  = "https://api.openweathermap.org/geo/1.0"
)

type OpenWeather struct {
	apiKey  string
	baseURL string
	geoURL  string
	client  *http.Client
}

func NewOpenWeather() *OpenWeather {
	return &OpenWeather{
		apiKey:  os.Getenv("OPENWEATHER_API_KEY"),
		baseURL: openWeatherBaseURL,
		geoURL:  openWeatherGeoURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// NewOpenWeatherAt is used by tests to point at a stub server.
func NewOpenWeatherAt(baseURL, apiKey string) *OpenWeather {
	return &OpenWeather{
		apiKey:  apiKey,
		baseURL: baseURL,
		geoURL:  baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// getJSON performs one API call and decodes the body. Upstream auth and
// availability problems all surface as CodeUnavailable: the caller cannot fix
// them and retrying later is the only remedy.
func (p *OpenWeather) getJSON(ctx context.Context, op, rawURL string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to build request", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return utils.E(utils.CodeUnavailable, op, "weather service is temporarily unavailable", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return utils.E(utils.CodeUnavailable, op, "weather service is not properly configured", nil)
	case resp.StatusCode != http.StatusOK:
		return utils.E(utils.CodeUnavailable, op,
			fmt.Sprintf("weather service returned status %d", resp.StatusCode), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return utils.E(utils.CodeUnavailable, op, "invalid weather service response", err)
	}
	return nil
}

func (p *OpenWeather) requireKey(op string) error {
	if p.apiKey == "" {
		return utils.E(utils.CodeUnavailable, op, "weather service is not configured", nil)
	}
	return nil
}

func normalizeUnits(units string) string {
	if units != "metric" && units != "imperial" {
		return "metric"
	}
	return units
}

func coordQuery(lat, lon float64, apiKey, units string) url.Values {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("appid", apiKey)
	q.Set("units", units)
	return q
}

type owCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

func (c owCondition) model() models.WeatherCondition {
	return models.WeatherCondition{Main: c.Main, Description: c.Description, Icon: c.Icon}
}

type owResponse struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
		Pressure  int     `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   int     `json:"deg"`
	} `json:"wind"`
	Visibility int           `json:"visibility"` // meters
	Weather    []owCondition `json:"weather"`
}

func (p *OpenWeather) Current(ctx context.Context, lat, lon float64, units string) (*Report, error) {
	const op = "OpenWeather.Current"

	if err := p.requireKey(op); err != nil {
		return nil, err
	}
	units = normalizeUnits(units)

	q := coordQuery(lat, lon, p.apiKey, units)
	var body owResponse
	if err := p.getJSON(ctx, op, p.baseURL+"/weather?"+q.Encode(), &body); err != nil {
		return nil, err
	}
	if len(body.Weather) == 0 {
		return nil, utils.E(utils.CodeUnavailable, op, "invalid weather service response", nil)
	}

	current := models.WeatherCurrent{
		Temperature:   int(math.Round(body.Main.Temp)),
		FeelsLike:     int(math.Round(body.Main.FeelsLike)),
		Humidity:      body.Main.Humidity,
		Pressure:      body.Main.Pressure,
		WindSpeed:     body.Wind.Speed,
		WindDirection: body.Wind.Deg,
		Condition:     body.Weather[0].model(),
		Timestamp:     time.Now().UTC(),
	}
	if body.Visibility > 0 {
		current.Visibility = float64(body.Visibility) / 1000.0
	}

	return &Report{
		Location: models.WeatherLocation{
			City:    body.Name,
			Country: body.Sys.Country,
			Lat:     lat,
			Lon:     lon,
		},
		Current: current,
		Source:  "openweather",
	}, nil
}

type owForecastResponse struct {
	City struct {
		Name    string `json:"name"`
		Country string `json:"country"`
		Coord   struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"coord"`
	} `json:"city"`
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Humidity  int     `json:"humidity"`
		} `json:"main"`
		Rain    map[string]float64 `json:"rain"` // "3h" -> mm
		Weather []owCondition      `json:"weather"`
	} `json:"list"`
}

func (p *OpenWeather) Forecast(ctx context.Context, lat, lon float64, units string, maxSlots int) (*Forecast, error) {
	const op = "OpenWeather.Forecast"

	if err := p.requireKey(op); err != nil {
		return nil, err
	}
	units = normalizeUnits(units)
	if maxSlots < 1 || maxSlots > 40 {
		maxSlots = 40
	}

	q := coordQuery(lat, lon, p.apiKey, units)
	q.Set("cnt", strconv.Itoa(maxSlots))

	var body owForecastResponse
	if err := p.getJSON(ctx, op, p.baseURL+"/forecast?"+q.Encode(), &body); err != nil {
		return nil, err
	}

	hours := make([]ForecastHour, 0, len(body.List))
	for _, slot := range body.List {
		if len(slot.Weather) == 0 {
			continue
		}
		hours = append(hours, ForecastHour{
			Time:          time.Unix(slot.Dt, 0).UTC(),
			Temperature:   int(math.Round(slot.Main.Temp)),
			FeelsLike:     int(math.Round(slot.Main.FeelsLike)),
			Humidity:      slot.Main.Humidity,
			Precipitation: slot.Rain["3h"],
			Condition:     slot.Weather[0].model(),
		})
	}
	if len(hours) == 0 {
		return nil, utils.E(utils.CodeUnavailable, op, "invalid weather service response", nil)
	}

	return &Forecast{
		Location: models.WeatherLocation{
			City:    body.City.Name,
			Country: body.City.Country,
			Lat:     body.City.Coord.Lat,
			Lon:     body.City.Coord.Lon,
		},
		Hours: hours,
	}, nil
}

type owGeoEntry struct {
	Name    string  `json:"name"`
	State   string  `json:"state"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

func (p *OpenWeather) Geocode(ctx context.Context, query string, limit int) ([]City, error) {
	const op = "OpenWeather.Geocode"

	if err := p.requireKey(op); err != nil {
		return nil, err
	}
	if limit < 1 || limit > 10 {
		limit = 5
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("appid", p.apiKey)

	var body []owGeoEntry
	if err := p.getJSON(ctx, op, p.geoURL+"/direct?"+q.Encode(), &body); err != nil {
		return nil, err
	}

	cities := make([]City, 0, len(body))
	for _, e := range body {
		cities = append(cities, City{
			Name:    e.Name,
			State:   e.State,
			Country: e.Country,
			Lat:     e.Lat,
			Lon:     e.Lon,
		})
	}
	return cities, nil
}
