package document

import (
	"context"
	"testing"
	"time"

	"innoclub/internal/features/application"
	"innoclub/internal/features/audit"
	"innoclub/internal/features/file"
	"innoclub/internal/features/notification"
	"innoclub/internal/features/requirement"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type fakeDocRepo struct {
	docs    map[string]*ApplicationDocument
	saveErr error
	reviews []ReviewUpdate
	deleted []string
}

func newFakeDocRepo() *fakeDocRepo {
	return &fakeDocRepo{docs: map[string]*ApplicationDocument{}}
}

func (r *fakeDocRepo) Save(ctx context.Context, doc *ApplicationDocument) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	r.docs[doc.ID.Hex()] = doc
	return nil
}

func (r *fakeDocRepo) GetForApplication(ctx context.Context, applicationID, docID string) (*ApplicationDocument, error) {
	doc, ok := r.docs[docID]
	if !ok || doc.ApplicationID.Hex() != applicationID {
		return nil, mongo.ErrNoDocuments
	}
	copied := *doc
	return &copied, nil
}

func (r *fakeDocRepo) ListByApplication(ctx context.Context, applicationID string) ([]ApplicationDocument, error) {
	var out []ApplicationDocument
	for _, doc := range r.docs {
		if doc.ApplicationID.Hex() == applicationID {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (r *fakeDocRepo) ListPending(ctx context.Context, page, limit int64) ([]ApplicationDocument, int64, error) {
	var out []ApplicationDocument
	for _, doc := range r.docs {
		if doc.Status == StatusPending {
			out = append(out, *doc)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeDocRepo) ApplyReview(ctx context.Context, docID primitive.ObjectID, update ReviewUpdate) error {
	doc, ok := r.docs[docID.Hex()]
	if !ok {
		return mongo.ErrNoDocuments
	}
	r.reviews = append(r.reviews, update)
	doc.Status = update.Status
	doc.RejectionReason = update.RejectionReason
	doc.ReviewerNotes = update.ReviewerNotes
	doc.ReviewedBy = update.ReviewedBy
	doc.ReviewedAt = &update.ReviewedAt
	return nil
}

func (r *fakeDocRepo) Delete(ctx context.Context, docID primitive.ObjectID) error {
	r.deleted = append(r.deleted, docID.Hex())
	delete(r.docs, docID.Hex())
	return nil
}

func (r *fakeDocRepo) EnsureIndexes(ctx context.Context) error { return nil }

type fakeAppService struct {
	apps map[string]*application.Application
}

func (s *fakeAppService) CreateApplication(ctx context.Context, app *application.Application) error {
	return nil
}

func (s *fakeAppService) GetApplication(ctx context.Context, id string) (*application.Application, error) {
	app, ok := s.apps[id]
	if !ok {
		return nil, application.ErrNotFound
	}
	return app, nil
}

func (s *fakeAppService) ListApplications(ctx context.Context, q application.ListQuery, page, limit int64) ([]*application.Application, int64, error) {
	return nil, 0, nil
}

func (s *fakeAppService) Stats(ctx context.Context) (map[application.ApplicationStatus]int64, error) {
	return nil, nil
}

func (s *fakeAppService) BulkUpdateStatus(ctx context.Context, ids []string, status application.ApplicationStatus, reason, actorID string) (*application.BulkResult, error) {
	return nil, nil
}

func (s *fakeAppService) Export(ctx context.Context, format string, fields []string, q application.ListQuery, actorID string) (*application.ExportFile, error) {
	return nil, nil
}

type fakeFileService struct {
	files map[string]*file.StoredFile
}

func (s *fakeFileService) Store(ctx context.Context, in file.UploadInput) (*file.StoredFile, error) {
	return nil, nil
}

func (s *fakeFileService) GetFile(ctx context.Context, id string) (*file.StoredFile, error) {
	f, ok := s.files[id]
	if !ok {
		return nil, file.ErrNotFound
	}
	return f, nil
}

func (s *fakeFileService) OpenByFilename(ctx context.Context, filename string) (*file.StoredFile, error) {
	return nil, nil
}

func (s *fakeFileService) OpenForView(ctx context.Context, id string) (*file.StoredFile, error) {
	return nil, nil
}

func (s *fakeFileService) ListFiles(ctx context.Context, filter file.ListFilter, page, limit int64) ([]*file.StoredFile, int64, error) {
	return nil, 0, nil
}

func (s *fakeFileService) DeleteFile(ctx context.Context, id, requesterID string, requesterIsAdmin bool) error {
	return nil
}

type recordedNotification struct {
	UserID  primitive.ObjectID
	Title   string
	Message string
	Type    notification.NotificationType
}

type fakeNotificationService struct {
	sent []recordedNotification
}

func (s *fakeNotificationService) Notify(ctx context.Context, userID primitive.ObjectID, title, message string, ntype notification.NotificationType, link string) error {
	s.sent = append(s.sent, recordedNotification{UserID: userID, Title: title, Message: message, Type: ntype})
	return nil
}

func (s *fakeNotificationService) GetUserNotifications(ctx context.Context, userID primitive.ObjectID, page, limit int64) ([]notification.Notification, int64, error) {
	return nil, 0, nil
}

func (s *fakeNotificationService) GetUnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return 0, nil
}

func (s *fakeNotificationService) MarkAsRead(ctx context.Context, id string, userID primitive.ObjectID) error {
	return nil
}

func (s *fakeNotificationService) MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) error {
	return nil
}

type fakeAuditService struct {
	entries []audit.AuditLog
}

func (s *fakeAuditService) LogChange(ctx context.Context, action audit.AuditAction, module, recordID, actorID string, changes map[string]audit.Change) error {
	s.entries = append(s.entries, audit.AuditLog{Action: action, Module: module, RecordID: recordID, ActorID: actorID, Changes: changes})
	return nil
}

func (s *fakeAuditService) Recent(ctx context.Context, limit int64) ([]audit.AuditLog, error) {
	return nil, nil
}

type testEnv struct {
	svc           *DocumentServiceImpl
	docRepo       *fakeDocRepo
	apps          *fakeAppService
	files         *fakeFileService
	notifications *fakeNotificationService
	audits        *fakeAuditService
	app           *application.Application
}

func newTestEnv() *testEnv {
	app := &application.Application{
		ID:          primitive.NewObjectID(),
		ApplicantID: primitive.NewObjectID(),
		FullName:    "سارا محمدی",
		Email:       "sara@example.com",
		Status:      application.StatusPending,
	}

	docRepo := newFakeDocRepo()
	apps := &fakeAppService{apps: map[string]*application.Application{app.ID.Hex(): app}}
	files := &fakeFileService{files: map[string]*file.StoredFile{}}
	notifications := &fakeNotificationService{}
	audits := &fakeAuditService{}

	svc := &DocumentServiceImpl{
		DocRepo:             docRepo,
		AppService:          apps,
		FileService:         files,
		NotificationService: notifications,
		AuditService:        audits,
		Logger:              zap.NewNop(),
	}

	return &testEnv{
		svc:           svc,
		docRepo:       docRepo,
		apps:          apps,
		files:         files,
		notifications: notifications,
		audits:        audits,
		app:           app,
	}
}

func (e *testEnv) addDocument(status DocumentStatus) *ApplicationDocument {
	doc := &ApplicationDocument{
		ID:            primitive.NewObjectID(),
		ApplicationID: e.app.ID,
		ApplicantID:   e.app.ApplicantID,
		Type:          requirement.DocTypeNationalID,
		Status:        status,
		UploadedAt:    time.Now(),
	}
	e.docRepo.docs[doc.ID.Hex()] = doc
	return doc
}

func (e *testEnv) addStoredFile(mimeType string, size int64) *file.StoredFile {
	f := &file.StoredFile{
		ID:               primitive.NewObjectID(),
		OriginalFilename: "card.jpg",
		MimeType:         mimeType,
		Size:             size,
	}
	e.files.files[f.ID.Hex()] = f
	return f
}

func TestSubmitDocument(t *testing.T) {
	env := newTestEnv()
	stored := env.addStoredFile("image/jpeg", 500*1024)

	doc, err := env.svc.Submit(context.Background(), SubmitInput{
		ApplicationID: env.app.ID.Hex(),
		Type:          requirement.DocTypeNationalID,
		FileID:        stored.ID.Hex(),
		ActorID:       env.app.ApplicantID.Hex(),
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, doc.Status)
	assert.Equal(t, env.app.FullName, doc.ApplicantName)
	assert.Equal(t, env.app.Email, doc.ApplicantEmail)
	assert.Equal(t, stored.ID, doc.FileID)
	assert.Equal(t, "card.jpg", doc.OriginalFilename)
}

func TestSubmitRejectsWrongMime(t *testing.T) {
	env := newTestEnv()
	stored := env.addStoredFile("application/zip", 1024)

	_, err := env.svc.Submit(context.Background(), SubmitInput{
		ApplicationID: env.app.ID.Hex(),
		Type:          requirement.DocTypeNationalID,
		FileID:        stored.ID.Hex(),
		ActorID:       env.app.ApplicantID.Hex(),
	})
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestSubmitDuplicatePending(t *testing.T) {
	env := newTestEnv()
	stored := env.addStoredFile("image/jpeg", 1024)

	// The partial unique index surfaces as a duplicate key write error
	env.docRepo.saveErr = mongo.WriteException{
		WriteErrors: []mongo.WriteError{{Code: 11000}},
	}

	_, err := env.svc.Submit(context.Background(), SubmitInput{
		ApplicationID: env.app.ID.Hex(),
		Type:          requirement.DocTypeNationalID,
		FileID:        stored.ID.Hex(),
		ActorID:       env.app.ApplicantID.Hex(),
	})
	assert.ErrorIs(t, err, ErrDuplicatePending)
}

func TestSubmitForbiddenForStranger(t *testing.T) {
	env := newTestEnv()
	stored := env.addStoredFile("image/jpeg", 1024)

	_, err := env.svc.Submit(context.Background(), SubmitInput{
		ApplicationID: env.app.ID.Hex(),
		Type:          requirement.DocTypeNationalID,
		FileID:        stored.ID.Hex(),
		ActorID:       primitive.NewObjectID().Hex(),
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSubmitUnknownApplication(t *testing.T) {
	env := newTestEnv()
	stored := env.addStoredFile("image/jpeg", 1024)

	_, err := env.svc.Submit(context.Background(), SubmitInput{
		ApplicationID: primitive.NewObjectID().Hex(),
		Type:          requirement.DocTypeNationalID,
		FileID:        stored.ID.Hex(),
		ActorID:       env.app.ApplicantID.Hex(),
	})
	assert.ErrorIs(t, err, ErrAppNotFound)
}

func TestVerifyPendingDocument(t *testing.T) {
	env := newTestEnv()
	doc := env.addDocument(StatusPending)

	got, err := env.svc.Verify(context.Background(), env.app.ID.Hex(), doc.ID.Hex(), "reviewer-1", "looks good")
	require.NoError(t, err)

	assert.Equal(t, StatusVerified, got.Status)
	assert.Equal(t, "reviewer-1", got.ReviewedBy)
	require.NotNil(t, got.ReviewedAt, "response must carry the review timestamp")
	require.Len(t, env.notifications.sent, 1)
	assert.Equal(t, notification.NotificationTypeSuccess, env.notifications.sent[0].Type)
	assert.Equal(t, env.app.ApplicantID, env.notifications.sent[0].UserID)
	require.Len(t, env.audits.entries, 1)
	assert.Equal(t, audit.AuditActionReview, env.audits.entries[0].Action)
}

func TestVerifyIsIdempotent(t *testing.T) {
	env := newTestEnv()
	doc := env.addDocument(StatusVerified)

	got, err := env.svc.Verify(context.Background(), env.app.ID.Hex(), doc.ID.Hex(), "reviewer-1", "")
	require.NoError(t, err)

	assert.Equal(t, StatusVerified, got.Status)
	assert.Empty(t, env.docRepo.reviews, "no second review write expected")
	assert.Empty(t, env.notifications.sent, "no duplicate notification expected")
}

func TestVerifyRejectedDocumentConflicts(t *testing.T) {
	env := newTestEnv()
	doc := env.addDocument(StatusRejected)

	_, err := env.svc.Verify(context.Background(), env.app.ID.Hex(), doc.ID.Hex(), "reviewer-1", "")
	assert.ErrorIs(t, err, ErrAlreadyDecided)
}

func TestRejectRequiresReason(t *testing.T) {
	env := newTestEnv()
	doc := env.addDocument(StatusPending)

	_, err := env.svc.Reject(context.Background(), env.app.ID.Hex(), doc.ID.Hex(), "reviewer-1", "   ", "")
	assert.ErrorIs(t, err, ErrEmptyReason)
	assert.Empty(t, env.docRepo.reviews)
}

func TestRejectPendingDocument(t *testing.T) {
	env := newTestEnv()
	doc := env.addDocument(StatusPending)

	got, err := env.svc.Reject(context.Background(), env.app.ID.Hex(), doc.ID.Hex(), "reviewer-1", "تصویر ناخوانا است", "")
	require.NoError(t, err)

	assert.Equal(t, StatusRejected, got.Status)
	assert.Equal(t, "تصویر ناخوانا است", got.RejectionReason)
	require.NotNil(t, got.ReviewedAt, "response must carry the review timestamp")
	require.Len(t, env.notifications.sent, 1)
	assert.Equal(t, notification.NotificationTypeError, env.notifications.sent[0].Type)
	assert.Contains(t, env.notifications.sent[0].Message, "تصویر ناخوانا است")
}

func TestRejectVerifiedDocumentConflicts(t *testing.T) {
	env := newTestEnv()
	doc := env.addDocument(StatusVerified)

	_, err := env.svc.Reject(context.Background(), env.app.ID.Hex(), doc.ID.Hex(), "reviewer-1", "reason", "")
	assert.ErrorIs(t, err, ErrAlreadyDecided)
}

func TestRequestInfoLeavesStatusUntouched(t *testing.T) {
	env := newTestEnv()
	doc := env.addDocument(StatusPending)

	err := env.svc.RequestInfo(context.Background(), env.app.ID.Hex(), doc.ID.Hex(), "reviewer-1", "لطفا تصویر واضح‌تری ارسال کنید")
	require.NoError(t, err)

	stored := env.docRepo.docs[doc.ID.Hex()]
	assert.Equal(t, StatusPending, stored.Status)
	assert.Empty(t, env.docRepo.reviews)
	require.Len(t, env.notifications.sent, 1)
	assert.Equal(t, notification.NotificationTypeWarning, env.notifications.sent[0].Type)
}

func TestRequestInfoRequiresMessage(t *testing.T) {
	env := newTestEnv()
	doc := env.addDocument(StatusPending)

	err := env.svc.RequestInfo(context.Background(), env.app.ID.Hex(), doc.ID.Hex(), "reviewer-1", "")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, env.notifications.sent)
}

func TestDeleteOwnOnlyWhilePending(t *testing.T) {
	env := newTestEnv()
	pending := env.addDocument(StatusPending)
	verified := env.addDocument(StatusVerified)

	err := env.svc.DeleteOwn(context.Background(), env.app.ID.Hex(), verified.ID.Hex(), env.app.ApplicantID.Hex())
	assert.ErrorIs(t, err, ErrNotPending)

	err = env.svc.DeleteOwn(context.Background(), env.app.ID.Hex(), pending.ID.Hex(), env.app.ApplicantID.Hex())
	require.NoError(t, err)
	assert.NotContains(t, env.docRepo.docs, pending.ID.Hex())
}

func TestDeleteOwnForbiddenForOthers(t *testing.T) {
	env := newTestEnv()
	doc := env.addDocument(StatusPending)

	err := env.svc.DeleteOwn(context.Background(), env.app.ID.Hex(), doc.ID.Hex(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGetProgress(t *testing.T) {
	env := newTestEnv()

	verified := env.addDocument(StatusVerified) // national-id
	rejected := env.addDocument(StatusRejected)
	rejected.Type = requirement.DocTypePersonalPhoto
	_ = verified

	progress, err := env.svc.GetProgress(context.Background(), env.app.ID.Hex(), env.app.ApplicantID.Hex(), false)
	require.NoError(t, err)

	// One of the four required types satisfied; the rejected one does not count
	assert.Equal(t, 25, progress.CompletionPercentage)
	assert.Len(t, progress.Documents, 2)
	assert.Len(t, progress.Requirements, len(requirement.Catalog()))
}
