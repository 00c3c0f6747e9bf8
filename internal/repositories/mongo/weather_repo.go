package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/clockpro/backend/internal/models"
	"github.com/clockpro/backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type WeatherRepository interface {
	// FindFresh returns a cached report for the coordinates and units that
	// has not expired yet, or utils.ErrNotFound.
	FindFresh(ctx context.Context, lat, lon float64, units string) (*models.WeatherCache, error)
	Save(ctx context.Context, w *models.WeatherCache) error
}

type weatherRepo struct {
	col *mongo.Collection
}

func NewWeatherRepo(db *mongo.Database) WeatherRepository {
	return &weatherRepo{col: db.Collection("weather_cache")}
}

func (r *weatherRepo) FindFresh(ctx context.Context, lat, lon float64, units string) (*models.WeatherCache, error) {
	var w models.WeatherCache
	err := r.col.FindOne(ctx, bson.M{
		"location.lat": lat,
		"location.lon": lon,
		"units":        units,
		"expires_at":   bson.M{"$gt": time.Now().UTC()},
	}).Decode(&w)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *weatherRepo) Save(ctx context.Context, w *models.WeatherCache) error {
	if w.CachedAt.IsZero() {
		w.CachedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, w)
	return err
}
