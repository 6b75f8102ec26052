package document

import (
	"time"

	"innoclub/internal/features/requirement"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DocumentStatus string

const (
	StatusPending  DocumentStatus = "pending"
	StatusVerified DocumentStatus = "verified"
	StatusRejected DocumentStatus = "rejected"
)

// ApplicationDocument is one applicant-submitted document under review.
// Applicant identity is denormalized for the review screens. A rejected
// document is never mutated back to pending; re-upload creates a fresh
// pending row and the rejected one stays visible with its reason.
type ApplicationDocument struct {
	ID               primitive.ObjectID        `bson:"_id,omitempty" json:"id"`
	ApplicationID    primitive.ObjectID        `bson:"application_id" json:"application_id"`
	ApplicantID      primitive.ObjectID        `bson:"applicant_id" json:"applicant_id"`
	ApplicantName    string                    `bson:"applicant_name" json:"applicant_name"`
	ApplicantEmail   string                    `bson:"applicant_email" json:"applicant_email"`
	Type             requirement.DocumentType  `bson:"type" json:"type"`
	FileID           primitive.ObjectID        `bson:"file_id" json:"file_id"`
	OriginalFilename string                    `bson:"original_filename" json:"original_filename"`
	Size             int64                     `bson:"size" json:"size"`
	MimeType         string                    `bson:"mime_type" json:"mime_type"`
	Status           DocumentStatus            `bson:"status" json:"status"`
	RejectionReason  string                    `bson:"rejection_reason,omitempty" json:"rejection_reason,omitempty"`
	ReviewerNotes    string                    `bson:"reviewer_notes,omitempty" json:"reviewer_notes,omitempty"`
	ReviewedBy       string                    `bson:"reviewed_by,omitempty" json:"reviewed_by,omitempty"`
	ReviewedAt       *time.Time                `bson:"reviewed_at,omitempty" json:"reviewed_at,omitempty"`
	UploadedAt       time.Time                 `bson:"uploaded_at" json:"uploaded_at"`
}
