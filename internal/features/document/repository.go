package document

import (
	"context"
	"time"

	"innoclub/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReviewUpdate is the persisted outcome of one admin decision.
type ReviewUpdate struct {
	Status          DocumentStatus
	RejectionReason string
	ReviewerNotes   string
	ReviewedBy      string
	ReviewedAt      time.Time
}

type DocumentRepository interface {
	Save(ctx context.Context, doc *ApplicationDocument) error
	GetForApplication(ctx context.Context, applicationID, docID string) (*ApplicationDocument, error)
	ListByApplication(ctx context.Context, applicationID string) ([]ApplicationDocument, error)
	ListPending(ctx context.Context, page, limit int64) ([]ApplicationDocument, int64, error)
	ApplyReview(ctx context.Context, docID primitive.ObjectID, update ReviewUpdate) error
	Delete(ctx context.Context, docID primitive.ObjectID) error
	EnsureIndexes(ctx context.Context) error
}

type DocumentRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewDocumentRepository(mongodb *database.MongodbDB) DocumentRepository {
	return &DocumentRepositoryImpl{
		Collection: mongodb.DB.Collection("application_documents"),
	}
}

func (r *DocumentRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			// At most one pending document per (application, type)
			Keys: bson.D{{Key: "application_id", Value: 1}, {Key: "type", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": string(StatusPending)}),
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "uploaded_at", Value: -1}},
		},
	})
	return err
}

func (r *DocumentRepositoryImpl) Save(ctx context.Context, doc *ApplicationDocument) error {
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	_, err := r.Collection.InsertOne(ctx, doc)
	return err
}

func (r *DocumentRepositoryImpl) GetForApplication(ctx context.Context, applicationID, docID string) (*ApplicationDocument, error) {
	appOID, err := primitive.ObjectIDFromHex(applicationID)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	docOID, err := primitive.ObjectIDFromHex(docID)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	var doc ApplicationDocument
	err = r.Collection.FindOne(ctx, bson.M{"_id": docOID, "application_id": appOID}).Decode(&doc)
	return &doc, err
}

func (r *DocumentRepositoryImpl) ListByApplication(ctx context.Context, applicationID string) ([]ApplicationDocument, error) {
	appOID, err := primitive.ObjectIDFromHex(applicationID)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	opts := options.Find().SetSort(bson.D{{Key: "uploaded_at", Value: -1}})
	cursor, err := r.Collection.Find(ctx, bson.M{"application_id": appOID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []ApplicationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *DocumentRepositoryImpl) ListPending(ctx context.Context, page, limit int64) ([]ApplicationDocument, int64, error) {
	filter := bson.M{"status": StatusPending}

	total, err := r.Collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "uploaded_at", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := r.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var docs []ApplicationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

func (r *DocumentRepositoryImpl) ApplyReview(ctx context.Context, docID primitive.ObjectID, update ReviewUpdate) error {
	set := bson.M{
		"status":      update.Status,
		"reviewed_by": update.ReviewedBy,
		"reviewed_at": update.ReviewedAt,
	}
	if update.RejectionReason != "" {
		set["rejection_reason"] = update.RejectionReason
	}
	if update.ReviewerNotes != "" {
		set["reviewer_notes"] = update.ReviewerNotes
	}

	res, err := r.Collection.UpdateOne(ctx, bson.M{"_id": docID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *DocumentRepositoryImpl) Delete(ctx context.Context, docID primitive.ObjectID) error {
	_, err := r.Collection.DeleteOne(ctx, bson.M{"_id": docID})
	return err
}
