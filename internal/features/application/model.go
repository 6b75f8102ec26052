package application

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ApplicationStatus string

const (
	StatusPending     ApplicationStatus = "pending"
	StatusUnderReview ApplicationStatus = "under-review"
	StatusApproved    ApplicationStatus = "approved"
	StatusRejected    ApplicationStatus = "rejected"
)

// ValidStatus reports whether s is a known application status.
func ValidStatus(s ApplicationStatus) bool {
	switch s {
	case StatusPending, StatusUnderReview, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type Application struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ApplicantID     primitive.ObjectID `bson:"applicant_id" json:"applicant_id"`
	FullName        string             `bson:"full_name" json:"full_name"`
	Email           string             `bson:"email" json:"email"`
	NationalCode    string             `bson:"national_code" json:"national_code"`
	University      string             `bson:"university" json:"university"`
	Major           string             `bson:"major" json:"major"`
	Degree          string             `bson:"degree" json:"degree"`
	Status          ApplicationStatus  `bson:"status" json:"status"`
	RejectionReason string             `bson:"rejection_reason,omitempty" json:"rejection_reason,omitempty"`
	SubmittedAt     time.Time          `bson:"submitted_at" json:"submitted_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

// ListQuery narrows the admin dashboard listing.
type ListQuery struct {
	Status     ApplicationStatus
	University string
	Major      string
	Degree     string
	From       *time.Time
	To         *time.Time
	Search     string // matches name, email, national code
}

// BulkError reports one failed id in a bulk operation.
type BulkError struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// BulkResult is the best-effort outcome of a bulk status change: ids are
// processed independently and a failing id never rolls back the others.
type BulkResult struct {
	SuccessCount int         `json:"success_count"`
	ErrorCount   int         `json:"error_count"`
	Errors       []BulkError `json:"errors,omitempty"`
}

// StatusCount is one bucket of the dashboard stats aggregation.
type StatusCount struct {
	Status ApplicationStatus `bson:"_id" json:"status"`
	Count  int64             `bson:"count" json:"count"`
}
