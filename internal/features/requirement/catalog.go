package requirement

import (
	"fmt"
	"math"
)

// DocumentType keys the static catalog of applicant document categories.
type DocumentType string

const (
	DocTypeNationalID    DocumentType = "national-id"
	DocTypePersonalPhoto DocumentType = "personal-photo"
	DocTypeTranscript    DocumentType = "transcript"
	DocTypeStudentCard   DocumentType = "student-card"
	DocTypeResume        DocumentType = "resume"
)

// Requirement describes one category of applicant-submitted document.
// The catalog is static and never persisted.
type Requirement struct {
	Type          DocumentType `json:"type"`
	Required      bool         `json:"required"`
	Label         string       `json:"label"`
	AcceptedMimes []string     `json:"acceptedMimes"`
	MaxSize       int64        `json:"maxSize"`
}

var catalog = []Requirement{
	{
		Type:          DocTypeNationalID,
		Required:      true,
		Label:         "تصویر کارت ملی",
		AcceptedMimes: []string{"image/jpeg", "image/png", "application/pdf"},
		MaxSize:       2 << 20,
	},
	{
		Type:          DocTypePersonalPhoto,
		Required:      true,
		Label:         "عکس پرسنلی",
		AcceptedMimes: []string{"image/jpeg", "image/png"},
		MaxSize:       1 << 20,
	},
	{
		Type:          DocTypeTranscript,
		Required:      true,
		Label:         "ریزنمرات تحصیلی",
		AcceptedMimes: []string{"application/pdf"},
		MaxSize:       5 << 20,
	},
	{
		Type:          DocTypeStudentCard,
		Required:      true,
		Label:         "تصویر کارت دانشجویی",
		AcceptedMimes: []string{"image/jpeg", "image/png", "application/pdf"},
		MaxSize:       2 << 20,
	},
	{
		Type:          DocTypeResume,
		Required:      false,
		Label:         "رزومه",
		AcceptedMimes: []string{"application/pdf"},
		MaxSize:       5 << 20,
	},
}

// Catalog returns the full requirement list.
func Catalog() []Requirement {
	out := make([]Requirement, len(catalog))
	copy(out, catalog)
	return out
}

// Get looks up one requirement by type key.
func Get(t DocumentType) (Requirement, bool) {
	for _, req := range catalog {
		if req.Type == t {
			return req, true
		}
	}
	return Requirement{}, false
}

// Validate checks an upload against the catalog entry for its type.
func Validate(t DocumentType, mimeType string, size int64) error {
	req, ok := Get(t)
	if !ok {
		return fmt.Errorf("unknown document type: %s", t)
	}
	if size > req.MaxSize {
		return fmt.Errorf("file too large for %s (max %d bytes)", t, req.MaxSize)
	}
	for _, m := range req.AcceptedMimes {
		if m == mimeType {
			return nil
		}
	}
	return fmt.Errorf("mime type %s not accepted for %s", mimeType, t)
}

// CompletionPercentage computes the applicant's progress over the required
// entries. satisfied maps a type to whether a non-rejected document exists.
func CompletionPercentage(satisfied map[DocumentType]bool) int {
	total, done := 0, 0
	for _, req := range catalog {
		if !req.Required {
			continue
		}
		total++
		if satisfied[req.Type] {
			done++
		}
	}
	if total == 0 {
		return 100
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}
