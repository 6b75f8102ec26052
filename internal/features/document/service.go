package document

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"innoclub/internal/features/application"
	"innoclub/internal/features/audit"
	"innoclub/internal/features/file"
	"innoclub/internal/features/notification"
	"innoclub/internal/features/requirement"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	ErrNotFound         = errors.New("document not found")
	ErrAppNotFound      = errors.New("application not found")
	ErrFileNotFound     = errors.New("stored file not found")
	ErrForbidden        = errors.New("not allowed to act on this document")
	ErrDuplicatePending = errors.New("a pending document of this type already exists for the application")
	ErrNotPending       = errors.New("only pending documents can be deleted")
	ErrAlreadyDecided   = errors.New("document already has a terminal decision")
	ErrEmptyReason      = errors.New("rejection reason must not be empty")
	ErrEmptyMessage     = errors.New("message must not be empty")
	ErrInvalidDocument  = errors.New("document does not satisfy the requirement")
)

// SubmitInput references an already-registered stored file.
type SubmitInput struct {
	ApplicationID string
	Type          requirement.DocumentType
	FileID        string
	ActorID       string
	ActorIsAdmin  bool
}

// Progress is the applicant-facing completion view.
type Progress struct {
	CompletionPercentage int                       `json:"completionPercentage"`
	Requirements         []requirement.Requirement `json:"requirements"`
	Documents            []ApplicationDocument     `json:"documents"`
}

type DocumentService interface {
	Submit(ctx context.Context, in SubmitInput) (*ApplicationDocument, error)
	ListByApplication(ctx context.Context, applicationID, actorID string, actorIsAdmin bool) ([]ApplicationDocument, error)
	GetProgress(ctx context.Context, applicationID, actorID string, actorIsAdmin bool) (*Progress, error)
	DeleteOwn(ctx context.Context, applicationID, docID, actorID string) error
	ListPending(ctx context.Context, page, limit int64) ([]ApplicationDocument, int64, error)
	Verify(ctx context.Context, applicationID, docID, reviewerID, notes string) (*ApplicationDocument, error)
	Reject(ctx context.Context, applicationID, docID, reviewerID, reason, notes string) (*ApplicationDocument, error)
	RequestInfo(ctx context.Context, applicationID, docID, reviewerID, message string) error
}

type DocumentServiceImpl struct {
	DocRepo             DocumentRepository
	AppService          application.ApplicationService
	FileService         file.FileService
	NotificationService notification.NotificationService
	AuditService        audit.AuditService
	Logger              *zap.Logger
}

func NewDocumentService(
	docRepo DocumentRepository,
	appService application.ApplicationService,
	fileService file.FileService,
	notificationService notification.NotificationService,
	auditService audit.AuditService,
	logger *zap.Logger,
) DocumentService {
	return &DocumentServiceImpl{
		DocRepo:             docRepo,
		AppService:          appService,
		FileService:         fileService,
		NotificationService: notificationService,
		AuditService:        auditService,
		Logger:              logger,
	}
}

// Submit registers a new pending document for the application. The partial
// unique index refuses a second pending document of the same type; re-upload
// after rejection passes because the rejected row no longer counts.
func (s *DocumentServiceImpl) Submit(ctx context.Context, in SubmitInput) (*ApplicationDocument, error) {
	app, err := s.AppService.GetApplication(ctx, in.ApplicationID)
	if err != nil {
		if errors.Is(err, application.ErrNotFound) {
			return nil, ErrAppNotFound
		}
		return nil, err
	}
	if app.ApplicantID.Hex() != in.ActorID && !in.ActorIsAdmin {
		return nil, ErrForbidden
	}

	stored, err := s.FileService.GetFile(ctx, in.FileID)
	if err != nil {
		if errors.Is(err, file.ErrNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}

	if err := requirement.Validate(in.Type, stored.MimeType, stored.Size); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	doc := &ApplicationDocument{
		ApplicationID:    app.ID,
		ApplicantID:      app.ApplicantID,
		ApplicantName:    app.FullName,
		ApplicantEmail:   app.Email,
		Type:             in.Type,
		FileID:           stored.ID,
		OriginalFilename: stored.OriginalFilename,
		Size:             stored.Size,
		MimeType:         stored.MimeType,
		Status:           StatusPending,
		UploadedAt:       time.Now(),
	}

	if err := s.DocRepo.Save(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicatePending
		}
		return nil, err
	}
	return doc, nil
}

func (s *DocumentServiceImpl) ListByApplication(ctx context.Context, applicationID, actorID string, actorIsAdmin bool) ([]ApplicationDocument, error) {
	app, err := s.AppService.GetApplication(ctx, applicationID)
	if err != nil {
		if errors.Is(err, application.ErrNotFound) {
			return nil, ErrAppNotFound
		}
		return nil, err
	}
	if app.ApplicantID.Hex() != actorID && !actorIsAdmin {
		return nil, ErrForbidden
	}
	return s.DocRepo.ListByApplication(ctx, applicationID)
}

// GetProgress computes the completion percentage over the required catalog
// entries. A type counts as satisfied while a non-rejected document exists.
func (s *DocumentServiceImpl) GetProgress(ctx context.Context, applicationID, actorID string, actorIsAdmin bool) (*Progress, error) {
	docs, err := s.ListByApplication(ctx, applicationID, actorID, actorIsAdmin)
	if err != nil {
		return nil, err
	}

	satisfied := make(map[requirement.DocumentType]bool)
	for _, doc := range docs {
		if doc.Status != StatusRejected {
			satisfied[doc.Type] = true
		}
	}

	if docs == nil {
		docs = []ApplicationDocument{}
	}
	return &Progress{
		CompletionPercentage: requirement.CompletionPercentage(satisfied),
		Requirements:         requirement.Catalog(),
		Documents:            docs,
	}, nil
}

// DeleteOwn removes an applicant's own document while it is still pending.
// Documents under or past review are never deleted by the workflow.
func (s *DocumentServiceImpl) DeleteOwn(ctx context.Context, applicationID, docID, actorID string) error {
	doc, err := s.getDocument(ctx, applicationID, docID)
	if err != nil {
		return err
	}
	if doc.ApplicantID.Hex() != actorID {
		return ErrForbidden
	}
	if doc.Status != StatusPending {
		return ErrNotPending
	}
	return s.DocRepo.Delete(ctx, doc.ID)
}

func (s *DocumentServiceImpl) ListPending(ctx context.Context, page, limit int64) ([]ApplicationDocument, int64, error) {
	return s.DocRepo.ListPending(ctx, page, limit)
}

// Verify marks a pending document verified. Re-verifying an already-verified
// document is a no-op returning the current state.
func (s *DocumentServiceImpl) Verify(ctx context.Context, applicationID, docID, reviewerID, notes string) (*ApplicationDocument, error) {
	doc, err := s.getDocument(ctx, applicationID, docID)
	if err != nil {
		return nil, err
	}

	switch doc.Status {
	case StatusVerified:
		return doc, nil
	case StatusRejected:
		return nil, ErrAlreadyDecided
	}

	now := time.Now()
	update := ReviewUpdate{Status: StatusVerified, ReviewerNotes: notes, ReviewedBy: reviewerID, ReviewedAt: now}
	if err := s.DocRepo.ApplyReview(ctx, doc.ID, update); err != nil {
		return nil, err
	}
	doc.Status = StatusVerified
	doc.ReviewerNotes = notes
	doc.ReviewedBy = reviewerID
	doc.ReviewedAt = &now

	s.notifyApplicant(ctx, doc, notification.NotificationTypeSuccess,
		"مدرک شما تایید شد",
		fmt.Sprintf("مدرک «%s» شما توسط کارشناس تایید شد.", s.typeLabel(doc.Type)))
	s.auditReview(ctx, doc, reviewerID, StatusPending, StatusVerified)

	return doc, nil
}

// Reject marks a pending document rejected with a mandatory reason. The
// client guards against empty reasons; the server validates again here.
func (s *DocumentServiceImpl) Reject(ctx context.Context, applicationID, docID, reviewerID, reason, notes string) (*ApplicationDocument, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrEmptyReason
	}

	doc, err := s.getDocument(ctx, applicationID, docID)
	if err != nil {
		return nil, err
	}

	switch doc.Status {
	case StatusRejected:
		return doc, nil
	case StatusVerified:
		return nil, ErrAlreadyDecided
	}

	now := time.Now()
	update := ReviewUpdate{Status: StatusRejected, RejectionReason: reason, ReviewerNotes: notes, ReviewedBy: reviewerID, ReviewedAt: now}
	if err := s.DocRepo.ApplyReview(ctx, doc.ID, update); err != nil {
		return nil, err
	}
	doc.Status = StatusRejected
	doc.RejectionReason = reason
	doc.ReviewerNotes = notes
	doc.ReviewedBy = reviewerID
	doc.ReviewedAt = &now

	s.notifyApplicant(ctx, doc, notification.NotificationTypeError,
		"مدرک شما رد شد",
		fmt.Sprintf("مدرک «%s» شما رد شد. دلیل: %s", s.typeLabel(doc.Type), reason))
	s.auditReview(ctx, doc, reviewerID, StatusPending, StatusRejected)

	return doc, nil
}

// RequestInfo sends the applicant a clarification request without touching
// the document's persisted status.
func (s *DocumentServiceImpl) RequestInfo(ctx context.Context, applicationID, docID, reviewerID, message string) error {
	if strings.TrimSpace(message) == "" {
		return ErrEmptyMessage
	}

	doc, err := s.getDocument(ctx, applicationID, docID)
	if err != nil {
		return err
	}

	s.notifyApplicant(ctx, doc, notification.NotificationTypeWarning,
		"نیاز به اطلاعات تکمیلی",
		fmt.Sprintf("درباره مدرک «%s»: %s", s.typeLabel(doc.Type), message))

	_ = s.AuditService.LogChange(ctx, audit.AuditActionReview, "application_documents",
		doc.ID.Hex(), reviewerID, map[string]audit.Change{
			"request_info": {New: message},
		})

	return nil
}

func (s *DocumentServiceImpl) getDocument(ctx context.Context, applicationID, docID string) (*ApplicationDocument, error) {
	doc, err := s.DocRepo.GetForApplication(ctx, applicationID, docID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *DocumentServiceImpl) typeLabel(t requirement.DocumentType) string {
	if req, ok := requirement.Get(t); ok {
		return req.Label
	}
	return string(t)
}

func (s *DocumentServiceImpl) notifyApplicant(ctx context.Context, doc *ApplicationDocument, ntype notification.NotificationType, title, message string) {
	link := "/applications/" + doc.ApplicationID.Hex() + "/documents"
	if err := s.NotificationService.Notify(ctx, doc.ApplicantID, title, message, ntype, link); err != nil {
		s.Logger.Warn("failed to notify applicant",
			zap.String("document_id", doc.ID.Hex()), zap.Error(err))
	}
}

func (s *DocumentServiceImpl) auditReview(ctx context.Context, doc *ApplicationDocument, reviewerID string, from, to DocumentStatus) {
	_ = s.AuditService.LogChange(ctx, audit.AuditActionReview, "application_documents",
		doc.ID.Hex(), reviewerID, map[string]audit.Change{
			"status": {Old: from, New: to},
		})
}
