package file

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Relation ties a stored file to an owning domain entity.
// Both fields are set together or not at all.
type Relation struct {
	Type string `json:"type" bson:"type"`
	ID   string `json:"id" bson:"id"`
}

// Relation types accepted by the registry.
const (
	RelationTeam       = "team"
	RelationEvent      = "event"
	RelationEvaluation = "evaluation"
	RelationTraining   = "training"
	RelationUser       = "user"
	RelationFunding    = "funding"
)

// UploaderAnonymous is recorded when an upload arrives without a bearer token.
const UploaderAnonymous = "anonymous"

type StoredFile struct {
	ID               primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	Filename         string                 `json:"filename" bson:"filename"` // generated storage key, globally unique
	OriginalFilename string                 `json:"originalName" bson:"original_filename"`
	MimeType         string                 `json:"mimetype" bson:"mime_type"`
	Size             int64                  `json:"size" bson:"size"`
	Path             string                 `json:"path" bson:"path"`
	URL              string                 `json:"url" bson:"url"`
	Thumbnail        string                 `json:"thumbnail,omitempty" bson:"thumbnail,omitempty"`
	ThumbnailPath    string                 `json:"-" bson:"thumbnail_path,omitempty"`
	UploadedBy       string                 `json:"uploadedBy" bson:"uploaded_by"`
	RelatedTo        *Relation              `json:"relatedTo,omitempty" bson:"related_to,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`
	IsPublic         bool                   `json:"isPublic" bson:"is_public"`
	Downloads        int64                  `json:"downloads" bson:"downloads"`
	CreatedAt        time.Time              `json:"createdAt" bson:"created_at"`
}
