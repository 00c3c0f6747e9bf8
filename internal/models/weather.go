package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WeatherCache documents expire via the TTL index on expires_at.
type WeatherCache struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Location WeatherLocation    `bson:"location" json:"location"`
	Current  WeatherCurrent     `bson:"current" json:"current"`
	Units    string             `bson:"units" json:"units"` // metric|imperial
	Source   string             `bson:"source" json:"source"`

	CachedAt  time.Time `bson:"cached_at" json:"cachedAt"`
	ExpiresAt time.Time `bson:"expires_at" json:"-"`
}

type WeatherLocation struct {
	City    string  `bson:"city" json:"city"`
	Country string  `bson:"country,omitempty" json:"country,omitempty"`
	Lat     float64 `bson:"lat" json:"lat"`
	Lon     float64 `bson:"lon" json:"lon"`
}

type WeatherCurrent struct {
	Temperature   int              `bson:"temperature" json:"temperature"`
	FeelsLike     int              `bson:"feels_like" json:"feelsLike"`
	Humidity      int              `bson:"humidity" json:"humidity"`
	Pressure      int              `bson:"pressure" json:"pressure"`
	WindSpeed     float64          `bson:"wind_speed" json:"windSpeed"`
	WindDirection int              `bson:"wind_direction" json:"windDirection"`
	Visibility    float64          `bson:"visibility,omitempty" json:"visibility,omitempty"` // km
	Condition     WeatherCondition `bson:"condition" json:"condition"`
	Timestamp     time.Time        `bson:"timestamp" json:"timestamp"`
}

type WeatherCondition struct {
	Main        string `bson:"main" json:"main"`               // "Clear", "Clouds", "Rain"
	Description string `bson:"description" json:"description"` // "clear sky"
	Icon        string `bson:"icon" json:"icon"`
}
