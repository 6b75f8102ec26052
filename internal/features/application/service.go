package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"innoclub/internal/config"
	"innoclub/internal/features/audit"
	"innoclub/internal/features/notification"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	ErrNotFound      = errors.New("application not found")
	ErrEmptyReason   = errors.New("rejection reason must not be empty")
	ErrInvalidStatus = errors.New("invalid application status")
)

type ApplicationService interface {
	CreateApplication(ctx context.Context, app *Application) error
	GetApplication(ctx context.Context, id string) (*Application, error)
	ListApplications(ctx context.Context, q ListQuery, page, limit int64) ([]*Application, int64, error)
	Stats(ctx context.Context) (map[ApplicationStatus]int64, error)
	BulkUpdateStatus(ctx context.Context, ids []string, status ApplicationStatus, reason, actorID string) (*BulkResult, error)
	Export(ctx context.Context, format string, fields []string, q ListQuery, actorID string) (*ExportFile, error)
}

type ApplicationServiceImpl struct {
	AppRepo             ApplicationRepository
	AuditService        audit.AuditService
	NotificationService notification.NotificationService
	Config              *config.Config
	Logger              *zap.Logger
}

func NewApplicationService(
	appRepo ApplicationRepository,
	auditService audit.AuditService,
	notificationService notification.NotificationService,
	cfg *config.Config,
	logger *zap.Logger,
) ApplicationService {
	return &ApplicationServiceImpl{
		AppRepo:             appRepo,
		AuditService:        auditService,
		NotificationService: notificationService,
		Config:              cfg,
		Logger:              logger,
	}
}

func (s *ApplicationServiceImpl) CreateApplication(ctx context.Context, app *Application) error {
	app.Status = StatusPending
	app.SubmittedAt = time.Now()
	app.UpdatedAt = app.SubmittedAt
	return s.AppRepo.Save(ctx, app)
}

func (s *ApplicationServiceImpl) GetApplication(ctx context.Context, id string) (*Application, error) {
	app, err := s.AppRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return app, nil
}

func (s *ApplicationServiceImpl) ListApplications(ctx context.Context, q ListQuery, page, limit int64) ([]*Application, int64, error) {
	return s.AppRepo.List(ctx, q, page, limit)
}

func (s *ApplicationServiceImpl) Stats(ctx context.Context) (map[ApplicationStatus]int64, error) {
	counts, err := s.AppRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	stats := map[ApplicationStatus]int64{
		StatusPending:     0,
		StatusUnderReview: 0,
		StatusApproved:    0,
		StatusRejected:    0,
	}
	for _, c := range counts {
		stats[c.Status] = c.Count
	}
	return stats, nil
}

// BulkUpdateStatus applies the status to every id independently. Failures are
// collected per id; a missing id fails that id only and never rolls back the
// rest of the batch.
func (s *ApplicationServiceImpl) BulkUpdateStatus(ctx context.Context, ids []string, status ApplicationStatus, reason, actorID string) (*BulkResult, error) {
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	if status == StatusRejected && strings.TrimSpace(reason) == "" {
		return nil, ErrEmptyReason
	}

	result := &BulkResult{}
	for _, id := range ids {
		app, err := s.GetApplication(ctx, id)
		if err != nil {
			result.ErrorCount++
			result.Errors = append(result.Errors, BulkError{ID: id, Message: err.Error()})
			continue
		}

		if err := s.AppRepo.UpdateStatus(ctx, id, status, reason); err != nil {
			result.ErrorCount++
			result.Errors = append(result.Errors, BulkError{ID: id, Message: err.Error()})
			continue
		}
		result.SuccessCount++

		s.notifyApplicant(ctx, app, status, reason)
	}

	_ = s.AuditService.LogChange(ctx, audit.AuditActionBulk, "applications",
		strings.Join(ids, ","), actorID, map[string]audit.Change{
			"status": {New: status},
		})

	return result, nil
}

func (s *ApplicationServiceImpl) notifyApplicant(ctx context.Context, app *Application, status ApplicationStatus, reason string) {
	var title, message string
	ntype := notification.NotificationTypeInfo

	switch status {
	case StatusApproved:
		title = "درخواست شما تایید شد"
		message = "درخواست عضویت شما در باشگاه نوآوری پذیرفته شد."
		ntype = notification.NotificationTypeSuccess
	case StatusRejected:
		title = "درخواست شما رد شد"
		message = fmt.Sprintf("متاسفانه درخواست شما پذیرفته نشد. دلیل: %s", reason)
		ntype = notification.NotificationTypeError
	default:
		title = "وضعیت درخواست شما تغییر کرد"
		message = fmt.Sprintf("وضعیت جدید درخواست شما: %s", status)
	}

	if err := s.NotificationService.Notify(ctx, app.ApplicantID, title, message, ntype, "/applications/"+app.ID.Hex()); err != nil {
		s.Logger.Warn("failed to notify applicant",
			zap.String("application_id", app.ID.Hex()), zap.Error(err))
	}
}
