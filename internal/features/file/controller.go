package file

import (
	"errors"
	"fmt"
	"math"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"

	"innoclub/internal/config"
	"innoclub/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type FileController struct {
	FileService FileService
	Config      *config.Config
}

func NewFileController(fileService FileService, cfg *config.Config) *FileController {
	for _, dir := range []string{cfg.FSPath, cfg.FSStaging} {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			os.MkdirAll(dir, 0755)
		}
	}
	return &FileController{
		FileService: fileService,
		Config:      cfg,
	}
}

// UploadFile godoc
// @Summary Upload file
// @Description Upload a single file, optionally tied to an owning entity
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Param relatedType formData string false "Owning entity type"
// @Param relatedId formData string false "Owning entity ID"
// @Param isPublic formData string false "Visibility flag"
// @Success 201 {object} StoredFile
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/files/upload [post]
func (ctrl *FileController) UploadFile(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "No file uploaded",
		})
	}

	record, err := ctrl.storeOne(c, fileHeader)
	if err != nil {
		return ctrl.uploadError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "File uploaded successfully",
		"data":    record,
	})
}

// UploadMultiple godoc
// @Summary Upload multiple files
// @Description Upload a batch of files; files are processed one at a time and a failing file does not abort the rest
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/files/upload/multiple [post]
func (ctrl *FileController) UploadMultiple(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil || len(form.File["file"]) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "No files uploaded",
		})
	}

	var records []*StoredFile
	var failures []fiber.Map
	for _, fileHeader := range form.File["file"] {
		record, err := ctrl.storeOne(c, fileHeader)
		if err != nil {
			failures = append(failures, fiber.Map{
				"filename": fileHeader.Filename,
				"error":    err.Error(),
			})
			continue
		}
		records = append(records, record)
	}

	resp := fiber.Map{
		"success": true,
		"message": fmt.Sprintf("%d file(s) uploaded", len(records)),
		"data":    records,
		"count":   len(records),
	}
	if len(failures) > 0 {
		resp["errors"] = failures
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// storeOne stages the multipart file on disk and hands it to the service.
func (ctrl *FileController) storeOne(c *fiber.Ctx, fileHeader *multipart.FileHeader) (*StoredFile, error) {
	stagedPath := filepath.Join(ctrl.Config.FSStaging, "stg_"+uuid.NewString()+filepath.Ext(fileHeader.Filename))
	if err := c.SaveFile(fileHeader, stagedPath); err != nil {
		return nil, fmt.Errorf("failed to save file to disk: %w", err)
	}

	uploadedBy := UploaderAnonymous
	if claims, ok := middleware.Claims(c); ok {
		uploadedBy = claims.UserID
	}

	return ctrl.FileService.Store(c.UserContext(), UploadInput{
		StagedPath:       stagedPath,
		OriginalFilename: fileHeader.Filename,
		MimeType:         fileHeader.Header.Get("Content-Type"),
		Size:             fileHeader.Size,
		UploadedBy:       uploadedBy,
		RelatedType:      c.FormValue("relatedType"),
		RelatedID:        c.FormValue("relatedId"),
		IsPublic:         c.FormValue("isPublic") == "true",
	})
}

func (ctrl *FileController) uploadError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	if errors.Is(err, ErrInvalidRelation) || errors.Is(err, ErrUnknownRelation) {
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}

// DownloadFile godoc
// @Summary Download file
// @Description Stream a file by its storage key; counts as a download
// @Tags files
// @Param filename path string true "Storage key"
// @Success 200 {file} file "File content"
// @Failure 404 {object} map[string]interface{}
// @Router /api/files/download/{filename} [get]
func (ctrl *FileController) DownloadFile(c *fiber.Ctx) error {
	record, err := ctrl.FileService.OpenByFilename(c.UserContext(), c.Params("filename"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "File not found",
		})
	}

	return c.Download(record.Path, record.OriginalFilename)
}

// ViewFile godoc
// @Summary Preview file inline
// @Description Stream a file by ID with inline disposition; counts as a download
// @Tags files
// @Param id path string true "File ID"
// @Success 200 {file} file "File content"
// @Failure 404 {object} map[string]interface{}
// @Router /api/files/view/{id} [get]
func (ctrl *FileController) ViewFile(c *fiber.Ctx) error {
	record, err := ctrl.FileService.OpenForView(c.UserContext(), c.Params("id"))
	if err != nil {
		msg := "File not found"
		if errors.Is(err, ErrMissingOnDisk) {
			msg = "File missing on disk"
		}
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   msg,
		})
	}

	c.Set(fiber.HeaderContentType, record.MimeType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", record.OriginalFilename))
	return c.SendFile(record.Path)
}

// GetFile godoc
// @Summary File metadata
// @Tags files
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} StoredFile
// @Failure 404 {object} map[string]interface{}
// @Router /api/files/{id} [get]
func (ctrl *FileController) GetFile(c *fiber.Ctx) error {
	record, err := ctrl.FileService.GetFile(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "File not found",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    record,
	})
}

// ListFiles godoc
// @Summary List files
// @Description Paginated registry listing, newest first. relatedType and relatedId filter together.
// @Tags files
// @Produce json
// @Param relatedType query string false "Owning entity type"
// @Param relatedId query string false "Owning entity ID"
// @Param uploadedBy query string false "Uploader ID"
// @Param page query int false "Page (1-based)"
// @Param limit query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/files [get]
func (ctrl *FileController) ListFiles(c *fiber.Ctx) error {
	relatedType := c.Query("relatedType")
	relatedID := c.Query("relatedId")
	if (relatedType == "") != (relatedID == "") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "relatedType and relatedId must be provided together",
		})
	}

	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "10"), 10, 64)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	files, total, err := ctrl.FileService.ListFiles(c.UserContext(), ListFilter{
		RelatedType: relatedType,
		RelatedID:   relatedID,
		UploadedBy:  c.Query("uploadedBy"),
	}, page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Error retrieving files",
		})
	}

	if files == nil {
		files = []*StoredFile{}
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    files,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": int64(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

// DeleteFile godoc
// @Summary Delete file
// @Description Delete a file by ID; only the uploader or an admin may delete
// @Tags files
// @Param id path string true "File ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/files/{id} [delete]
func (ctrl *FileController) DeleteFile(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Unauthorized",
		})
	}

	err := ctrl.FileService.DeleteFile(c.UserContext(), c.Params("id"), claims.UserID, claims.IsAdmin())
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "File not found",
			})
		case errors.Is(err, ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Error deleting file",
			})
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "File deleted successfully",
	})
}
