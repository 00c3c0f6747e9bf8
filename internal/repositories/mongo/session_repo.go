package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/clockpro/backend/internal/models"
	"github.com/clockpro/backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// HistoryFilter narrows ListByUser. SubType filters the sub_type field
// (work|short_break|long_break|custom); the stored type field only holds the
// collapsed pomodoro|break|focus values and is not what callers pass.
type HistoryFilter struct {
	Page     int
	Limit    int
	SubType  string
	DateFrom *time.Time
	DateTo   *time.Time
}

// EndActive carries a terminal transition. Exactly one of Completed /
// interrupted applies; interrupted is the negation.
type EndActive struct {
	At           time.Time
	Completed    bool
	Productivity *int
	Notes        string
	Reason       string
}

type SessionRepository interface {
	// Create inserts a new active session. The partial unique index on
	// (user_id, end_time == null) makes two concurrent starts race safely:
	// the loser gets utils.ErrActiveSession.
	Create(ctx context.Context, s *models.Session) error

	// FindActive returns the user's session with end_time == null, or
	// utils.ErrNotFound.
	FindActive(ctx context.Context, userID string) (*models.Session, error)

	// AddPausedTime atomically increments paused_time on the active session.
	AddPausedTime(ctx context.Context, userID string, seconds int) (*models.Session, error)

	// EndActive atomically moves the active session to a terminal state.
	// A concurrent caller loses the conditional update and gets
	// utils.ErrNotFound.
	EndActive(ctx context.Context, userID string, end EndActive) (*models.Session, error)

	ListByUser(ctx context.Context, userID string, f HistoryFilter) ([]models.Session, int64, error)
	FindByUserAndRange(ctx context.Context, userID string, from, to time.Time) ([]models.Session, error)

	// CompletedTotals sums completed sessions, optionally restricted to
	// sessions started at or after since.
	CompletedTotals(ctx context.Context, userID string, since *time.Time) (count int64, focusSeconds int64, err error)

	DeleteByUser(ctx context.Context, userID string) error
}

type sessionRepo struct {
	col *mongo.Collection
}

func NewSessionRepo(db *mongo.Database) SessionRepository {
	return &sessionRepo{col: db.Collection("sessions")}
}

func activeFilter(userID string) bson.M {
	return bson.M{"user_id": userID, "end_time": nil}
}

func (r *sessionRepo) Create(ctx context.Context, s *models.Session) error {
	now := time.Now().UTC()
	if s.StartTime.IsZero() {
		s.StartTime = now
	}
	s.CreatedAt = now
	s.UpdatedAt = now

	_, err := r.col.InsertOne(ctx, s)
	if mongo.IsDuplicateKeyError(err) {
		return utils.ErrActiveSession
	}
	return err
}

func (r *sessionRepo) FindActive(ctx context.Context, userID string) (*models.Session, error) {
	var s models.Session
	err := r.col.FindOne(ctx, activeFilter(userID)).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) AddPausedTime(ctx context.Context, userID string, seconds int) (*models.Session, error) {
	var s models.Session
	err := r.col.FindOneAndUpdate(ctx,
		activeFilter(userID),
		bson.M{
			"$inc": bson.M{"paused_time": seconds},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) EndActive(ctx context.Context, userID string, end EndActive) (*models.Session, error) {
	at := end.At.UTC()
	set := bson.M{
		"end_time":    at,
		"completed":   end.Completed,
		"interrupted": !end.Completed,
		"updated_at":  at,
	}
	if end.Productivity != nil {
		set["productivity"] = *end.Productivity
	}
	if end.Notes != "" {
		set["data.notes"] = end.Notes
	}
	if end.Reason != "" {
		set["data.interruption_reason"] = end.Reason
	}

	// The conditional update on end_time == null is the terminal-transition
	// guard: of two concurrent complete/stop calls only one matches.
	var s models.Session
	err := r.col.FindOneAndUpdate(ctx,
		activeFilter(userID),
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	// actual_duration derives from fields frozen by the write above, so the
	// follow-up is not racy: only the transition winner reaches this point.
	actual := int(at.Sub(s.StartTime).Seconds()) - s.PausedTime
	if actual < 0 {
		actual = 0
	}
	if _, err := r.col.UpdateByID(ctx, s.ID,
		bson.M{"$set": bson.M{"actual_duration": actual}}); err != nil {
		return nil, err
	}
	s.ActualDuration = actual
	return &s, nil
}

func (r *sessionRepo) ListByUser(ctx context.Context, userID string, f HistoryFilter) ([]models.Session, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}

	query := bson.M{"user_id": userID}
	if f.SubType != "" {
		query["sub_type"] = f.SubType
	}
	if f.DateFrom != nil || f.DateTo != nil {
		rng := bson.M{}
		if f.DateFrom != nil {
			rng["$gte"] = f.DateFrom.UTC()
		}
		if f.DateTo != nil {
			rng["$lte"] = f.DateTo.UTC()
		}
		query["start_time"] = rng
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	cur, err := r.col.Find(ctx, query,
		options.Find().
			SetSort(bson.D{{Key: "start_time", Value: -1}}).
			SetSkip(int64((f.Page-1)*f.Limit)).
			SetLimit(int64(f.Limit)),
	)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var out []models.Session
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *sessionRepo) FindByUserAndRange(ctx context.Context, userID string, from, to time.Time) ([]models.Session, error) {
	cur, err := r.col.Find(ctx,
		bson.M{
			"user_id":    userID,
			"start_time": bson.M{"$gte": from.UTC(), "$lte": to.UTC()},
		},
		options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Session
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sessionRepo) CompletedTotals(ctx context.Context, userID string, since *time.Time) (int64, int64, error) {
	match := bson.M{"user_id": userID, "completed": true}
	if since != nil {
		match["start_time"] = bson.M{"$gte": since.UTC()}
	}

	cur, err := r.col.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":           nil,
			"sessions":      bson.M{"$sum": 1},
			"focus_seconds": bson.M{"$sum": "$actual_duration"},
		}}},
	})
	if err != nil {
		return 0, 0, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		Sessions     int64 `bson:"sessions"`
		FocusSeconds int64 `bson:"focus_seconds"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, 0, err
	}
	if len(rows) == 0 {
		return 0, 0, nil
	}
	return rows[0].Sessions, rows[0].FocusSeconds, nil
}

func (r *sessionRepo) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"user_id": userID})
	return err
}
