package application

import (
	"context"
	"time"

	"innoclub/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ApplicationRepository interface {
	Save(ctx context.Context, app *Application) error
	Get(ctx context.Context, id string) (*Application, error)
	List(ctx context.Context, q ListQuery, page, limit int64) ([]*Application, int64, error)
	ListAll(ctx context.Context, q ListQuery, max int64) ([]*Application, error)
	UpdateStatus(ctx context.Context, id string, status ApplicationStatus, reason string) error
	CountByStatus(ctx context.Context) ([]StatusCount, error)
	EnsureIndexes(ctx context.Context) error
}

type ApplicationRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewApplicationRepository(mongodb *database.MongodbDB) ApplicationRepository {
	return &ApplicationRepositoryImpl{
		Collection: mongodb.DB.Collection("applications"),
	}
}

func (r *ApplicationRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "submitted_at", Value: -1}}},
		{Keys: bson.D{{Key: "applicant_id", Value: 1}}},
		{Keys: bson.D{{Key: "national_code", Value: 1}}},
	})
	return err
}

func (r *ApplicationRepositoryImpl) Save(ctx context.Context, app *Application) error {
	if app.ID.IsZero() {
		app.ID = primitive.NewObjectID()
	}
	_, err := r.Collection.InsertOne(ctx, app)
	return err
}

func (r *ApplicationRepositoryImpl) Get(ctx context.Context, id string) (*Application, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	var app Application
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&app)
	return &app, err
}

func buildQuery(q ListQuery) bson.M {
	query := bson.M{}
	if q.Status != "" {
		query["status"] = q.Status
	}
	if q.University != "" {
		query["university"] = q.University
	}
	if q.Major != "" {
		query["major"] = q.Major
	}
	if q.Degree != "" {
		query["degree"] = q.Degree
	}
	if q.From != nil || q.To != nil {
		dateRange := bson.M{}
		if q.From != nil {
			dateRange["$gte"] = *q.From
		}
		if q.To != nil {
			dateRange["$lte"] = *q.To
		}
		query["submitted_at"] = dateRange
	}
	if q.Search != "" {
		regex := primitive.Regex{Pattern: q.Search, Options: "i"}
		query["$or"] = bson.A{
			bson.M{"full_name": bson.M{"$regex": regex}},
			bson.M{"email": bson.M{"$regex": regex}},
			bson.M{"national_code": bson.M{"$regex": regex}},
		}
	}
	return query
}

func (r *ApplicationRepositoryImpl) List(ctx context.Context, q ListQuery, page, limit int64) ([]*Application, int64, error) {
	query := buildQuery(q)

	total, err := r.Collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "submitted_at", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var apps []*Application
	if err := cursor.All(ctx, &apps); err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

// ListAll returns every matching application up to max, for exports.
func (r *ApplicationRepositoryImpl) ListAll(ctx context.Context, q ListQuery, max int64) ([]*Application, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "submitted_at", Value: -1}}).
		SetLimit(max)

	cursor, err := r.Collection.Find(ctx, buildQuery(q), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var apps []*Application
	if err := cursor.All(ctx, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *ApplicationRepositoryImpl) UpdateStatus(ctx context.Context, id string, status ApplicationStatus, reason string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	set := bson.M{"status": status, "updated_at": time.Now()}
	if reason != "" {
		set["rejection_reason"] = reason
	}

	res, err := r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *ApplicationRepositoryImpl) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}

	cursor, err := r.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var counts []StatusCount
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}
