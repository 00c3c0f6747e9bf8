package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/clockpro/backend/internal/models"
	"github.com/clockpro/backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateSettings(ctx context.Context, id string, s models.UserSettings) (*models.User, error)
	UpdateWorldClocks(ctx context.Context, id string, clocks []models.WorldClock) (*models.User, error)

	// IncrementStats applies the delta as a single $inc/$set update so that
	// concurrent completions cannot lose counts.
	IncrementStats(ctx context.Context, id string, d models.StatsDelta) error

	Delete(ctx context.Context, id string) error
}

type userRepo struct {
	col *mongo.Collection
}

func NewUserRepo(db *mongo.Database) UserRepository {
	return &userRepo{col: db.Collection("users")}
}

func oid(id string) (primitive.ObjectID, error) {
	o, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, utils.ErrNotFound
	}
	return o, nil
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	res, err := r.col.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return utils.ErrDuplicateEmail
	}
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = id
	}
	return nil
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	o, err := oid(id)
	if err != nil {
		return nil, err
	}

	var u models.User
	err = r.col.FindOne(ctx, bson.M{"_id": o}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) UpdateSettings(ctx context.Context, id string, s models.UserSettings) (*models.User, error) {
	return r.findAndSet(ctx, id, bson.M{"settings": s})
}

func (r *userRepo) UpdateWorldClocks(ctx context.Context, id string, clocks []models.WorldClock) (*models.User, error) {
	return r.findAndSet(ctx, id, bson.M{"world_clocks": clocks})
}

func (r *userRepo) findAndSet(ctx context.Context, id string, set bson.M) (*models.User, error) {
	o, err := oid(id)
	if err != nil {
		return nil, err
	}
	set["updated_at"] = time.Now().UTC()

	var u models.User
	err = r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": o},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) IncrementStats(ctx context.Context, id string, d models.StatsDelta) error {
	o, err := oid(id)
	if err != nil {
		return err
	}

	res, err := r.col.UpdateByID(ctx, o, bson.M{
		"$inc": bson.M{
			"stats.total_focus_time":    d.FocusMinutes,
			"stats.completed_pomodoros": d.CompletedPomodoros,
			"stats.total_sessions":      d.Sessions,
		},
		"$set": bson.M{
			"stats.last_session_date": d.LastSessionDate.UTC(),
			"updated_at":              time.Now().UTC(),
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	o, err := oid(id)
	if err != nil {
		return err
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": o})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}
