package file

import (
	"context"

	"innoclub/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListFilter narrows the registry listing. RelatedType and RelatedID are
// applied together; the controller validates that pairing.
type ListFilter struct {
	RelatedType string
	RelatedID   string
	UploadedBy  string
}

type FileRepository interface {
	Save(ctx context.Context, file *StoredFile) error
	Get(ctx context.Context, id string) (*StoredFile, error)
	GetByFilename(ctx context.Context, filename string) (*StoredFile, error)
	List(ctx context.Context, filter ListFilter, page, limit int64) ([]*StoredFile, int64, error)
	IncrementDownloads(ctx context.Context, id primitive.ObjectID) error
	Delete(ctx context.Context, id string) error
	EnsureIndexes(ctx context.Context) error
}

type FileRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewFileRepository(mongodb *database.MongodbDB) FileRepository {
	return &FileRepositoryImpl{
		Collection: mongodb.DB.Collection("files"),
	}
}

func (r *FileRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "filename", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "related_to.type", Value: 1}, {Key: "related_to.id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "uploaded_by", Value: 1}, {Key: "created_at", Value: -1}},
		},
	})
	return err
}

func (r *FileRepositoryImpl) Save(ctx context.Context, file *StoredFile) error {
	if file.ID.IsZero() {
		file.ID = primitive.NewObjectID()
	}
	_, err := r.Collection.InsertOne(ctx, file)
	return err
}

func (r *FileRepositoryImpl) Get(ctx context.Context, id string) (*StoredFile, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	var file StoredFile
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&file)
	return &file, err
}

func (r *FileRepositoryImpl) GetByFilename(ctx context.Context, filename string) (*StoredFile, error) {
	var file StoredFile
	err := r.Collection.FindOne(ctx, bson.M{"filename": filename}).Decode(&file)
	return &file, err
}

func (r *FileRepositoryImpl) List(ctx context.Context, filter ListFilter, page, limit int64) ([]*StoredFile, int64, error) {
	query := bson.M{}
	if filter.RelatedType != "" && filter.RelatedID != "" {
		query["related_to.type"] = filter.RelatedType
		query["related_to.id"] = filter.RelatedID
	}
	if filter.UploadedBy != "" {
		query["uploaded_by"] = filter.UploadedBy
	}

	total, err := r.Collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var files []*StoredFile
	if err := cursor.All(ctx, &files); err != nil {
		return nil, 0, err
	}
	return files, total, nil
}

func (r *FileRepositoryImpl) IncrementDownloads(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"downloads": 1}})
	return err
}

func (r *FileRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
