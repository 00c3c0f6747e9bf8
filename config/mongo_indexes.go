package config

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureMongoIndexes creates the indexes the invariants depend on. Must run
// before the server starts taking requests: without uniq_active_session a
// check-then-act start has a race window between the read and the insert.
func EnsureMongoIndexes() error {
	if MongoClient == nil {
		return errors.New("MongoClient is nil; call InitMongo() first")
	}
	db := MongoDatabase()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sessions := db.Collection("sessions")
	_, err := sessions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		// At most one session per user with end_time == null. Concurrent
		// starts both insert; the second one gets a duplicate-key error.
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_active_session").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"end_time": bson.M{"$type": "null"}}),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "start_time", Value: -1}},
			Options: options.Index().SetName("by_user_started"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "sub_type", Value: 1}, {Key: "start_time", Value: -1}},
			Options: options.Index().SetName("by_user_subtype_started"),
		},
	})
	if err != nil {
		return err
	}

	users := db.Collection("users")
	_, err = users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().
				SetName("uniq_email").
				SetUnique(true),
		},
	})
	if err != nil {
		return err
	}

	weather := db.Collection("weather_cache")
	_, err = weather.Indexes().CreateMany(ctx, []mongo.IndexModel{
		// TTL: expired reports are removed by the server.
		{
			Keys: bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().
				SetName("ttl_expires_at").
				SetExpireAfterSeconds(0),
		},
		{
			Keys:    bson.D{{Key: "location.lat", Value: 1}, {Key: "location.lon", Value: 1}, {Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("by_coords_expiry"),
		},
	})
	return err
}
