package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"innoclub/internal/config"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	ErrNotFound        = errors.New("file not found")
	ErrMissingOnDisk   = errors.New("file record exists but blob is missing on disk")
	ErrForbidden       = errors.New("only the uploader or an admin may delete a file")
	ErrInvalidRelation = errors.New("relatedType and relatedId must be provided together")
	ErrUnknownRelation = errors.New("unknown relation type")
)

var relationTypes = map[string]bool{
	RelationTeam:       true,
	RelationEvent:      true,
	RelationEvaluation: true,
	RelationTraining:   true,
	RelationUser:       true,
	RelationFunding:    true,
}

// UploadInput describes one staged multipart file ready to be registered.
// StagedPath must already exist on disk; the service owns it from here on.
type UploadInput struct {
	StagedPath       string
	OriginalFilename string
	MimeType         string
	Size             int64
	UploadedBy       string
	RelatedType      string
	RelatedID        string
	IsPublic         bool
}

type FileService interface {
	Store(ctx context.Context, in UploadInput) (*StoredFile, error)
	GetFile(ctx context.Context, id string) (*StoredFile, error)
	OpenByFilename(ctx context.Context, filename string) (*StoredFile, error)
	OpenForView(ctx context.Context, id string) (*StoredFile, error)
	ListFiles(ctx context.Context, filter ListFilter, page, limit int64) ([]*StoredFile, int64, error)
	DeleteFile(ctx context.Context, id, requesterID string, requesterIsAdmin bool) error
}

type FileServiceImpl struct {
	FileRepo FileRepository
	Config   *config.Config
	Logger   *zap.Logger
}

func NewFileService(fileRepo FileRepository, cfg *config.Config, logger *zap.Logger) FileService {
	return &FileServiceImpl{
		FileRepo: fileRepo,
		Config:   cfg,
		Logger:   logger,
	}
}

// Store registers a staged upload: derive the thumbnail (images only),
// insert the record, then promote the blob out of staging. The staged
// artifacts are removed again when the insert fails, so a failed upload
// never leaves a registry row or a stray public file behind.
func (s *FileServiceImpl) Store(ctx context.Context, in UploadInput) (*StoredFile, error) {
	if (in.RelatedType == "") != (in.RelatedID == "") {
		return nil, ErrInvalidRelation
	}
	if in.RelatedType != "" && !relationTypes[in.RelatedType] {
		return nil, ErrUnknownRelation
	}

	filename := generateFilename(in.OriginalFilename)
	finalPath := filepath.Join(s.Config.FSPath, filename)

	record := &StoredFile{
		Filename:         filename,
		OriginalFilename: filepath.Base(in.OriginalFilename),
		MimeType:         in.MimeType,
		Size:             in.Size,
		Path:             finalPath,
		URL:              s.Config.BaseURL + "/api/files/download/" + filename,
		UploadedBy:       in.UploadedBy,
		IsPublic:         in.IsPublic,
		CreatedAt:        time.Now(),
	}
	if in.RelatedType != "" {
		record.RelatedTo = &Relation{Type: in.RelatedType, ID: in.RelatedID}
	}

	stagedThumb := ""
	if isImageMime(in.MimeType) {
		thumbName := "thumb_" + strings.TrimSuffix(filename, filepath.Ext(filename)) + ".jpg"
		stagedThumb = filepath.Join(s.Config.FSStaging, thumbName)

		width, height, err := generateThumbnail(in.StagedPath, stagedThumb)
		if err != nil {
			// Thumbnail failures never fail the upload
			s.Logger.Warn("thumbnail generation failed",
				zap.String("filename", filename), zap.Error(err))
			stagedThumb = ""
		} else {
			record.Thumbnail = s.Config.BaseURL + s.Config.FSURL + "/" + thumbName
			record.ThumbnailPath = filepath.Join(s.Config.FSPath, thumbName)
			record.Metadata = map[string]interface{}{"width": width, "height": height}
		}
	}

	if err := s.FileRepo.Save(ctx, record); err != nil {
		s.discardStaged(in.StagedPath, stagedThumb)
		return nil, fmt.Errorf("failed to save file metadata: %w", err)
	}

	if err := os.Rename(in.StagedPath, finalPath); err != nil {
		// Compensate: the row must not outlive a blob that never made it
		s.discardStaged(in.StagedPath, stagedThumb)
		if delErr := s.FileRepo.Delete(ctx, record.ID.Hex()); delErr != nil {
			s.Logger.Error("failed to roll back file record after promote failure",
				zap.String("id", record.ID.Hex()), zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to finalize upload: %w", err)
	}
	if stagedThumb != "" {
		if err := os.Rename(stagedThumb, record.ThumbnailPath); err != nil {
			s.Logger.Warn("failed to promote thumbnail",
				zap.String("filename", filename), zap.Error(err))
		}
	}

	return record, nil
}

func (s *FileServiceImpl) GetFile(ctx context.Context, id string) (*StoredFile, error) {
	record, err := s.FileRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return record, nil
}

// OpenByFilename resolves a file for raw download and counts the read.
func (s *FileServiceImpl) OpenByFilename(ctx context.Context, filename string) (*StoredFile, error) {
	record, err := s.FileRepo.GetByFilename(ctx, filename)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.FileRepo.IncrementDownloads(ctx, record.ID); err != nil {
		s.Logger.Warn("failed to increment download counter",
			zap.String("id", record.ID.Hex()), zap.Error(err))
	}
	record.Downloads++
	return record, nil
}

// OpenForView resolves a file for inline preview. It verifies the blob is
// still present on disk and reports that case distinctly from an unknown id.
func (s *FileServiceImpl) OpenForView(ctx context.Context, id string) (*StoredFile, error) {
	record, err := s.GetFile(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(record.Path); err != nil {
		return nil, ErrMissingOnDisk
	}
	if err := s.FileRepo.IncrementDownloads(ctx, record.ID); err != nil {
		s.Logger.Warn("failed to increment download counter",
			zap.String("id", record.ID.Hex()), zap.Error(err))
	}
	record.Downloads++
	return record, nil
}

func (s *FileServiceImpl) ListFiles(ctx context.Context, filter ListFilter, page, limit int64) ([]*StoredFile, int64, error) {
	return s.FileRepo.List(ctx, filter, page, limit)
}

// DeleteFile removes the blob and thumbnail from disk before deleting the
// record. Disk removal is idempotent so a record whose blob already vanished
// can still be cleaned up.
func (s *FileServiceImpl) DeleteFile(ctx context.Context, id, requesterID string, requesterIsAdmin bool) error {
	record, err := s.GetFile(ctx, id)
	if err != nil {
		return err
	}

	if record.UploadedBy != requesterID && !requesterIsAdmin {
		return ErrForbidden
	}

	if err := os.Remove(record.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file from disk: %w", err)
	}
	if record.ThumbnailPath != "" {
		if err := os.Remove(record.ThumbnailPath); err != nil && !os.IsNotExist(err) {
			s.Logger.Warn("failed to delete thumbnail from disk",
				zap.String("id", record.ID.Hex()), zap.Error(err))
		}
	}

	return s.FileRepo.Delete(ctx, id)
}

func (s *FileServiceImpl) discardStaged(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			s.Logger.Warn("failed to remove staged file", zap.String("path", p), zap.Error(err))
		}
	}
}

// generateFilename builds the unique storage key. The timestamp keeps keys
// roughly sortable on disk; the uuid carries the uniqueness guarantee.
func generateFilename(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), uuid.NewString(), ext)
}
