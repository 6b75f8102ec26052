package user

import (
	"context"
	"time"

	"innoclub/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository interface {
	Get(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	UpsertByEmail(ctx context.Context, u *User) error
	EnsureIndexes(ctx context.Context) error
}

type UserRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewUserRepository(mongodb *database.MongodbDB) UserRepository {
	return &UserRepositoryImpl{
		Collection: mongodb.DB.Collection("users"),
	}
}

func (r *UserRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *UserRepositoryImpl) Get(ctx context.Context, id string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	var u User
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&u)
	return &u, err
}

func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.Collection.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	return &u, err
}

// UpsertByEmail inserts the user or refreshes an existing row. Used by the
// seeder so repeated runs stay idempotent.
func (r *UserRepositoryImpl) UpsertByEmail(ctx context.Context, u *User) error {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"name":       u.Name,
			"password":   u.Password,
			"roles":      u.Roles,
			"status":     u.Status,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"created_at": now,
		},
	}
	_, err := r.Collection.UpdateOne(ctx, bson.M{"email": u.Email}, update, options.Update().SetUpsert(true))
	return err
}
