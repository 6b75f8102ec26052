package document

import (
	"errors"
	"math"
	"strconv"

	"innoclub/internal/features/requirement"
	"innoclub/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type DocumentController struct {
	DocService DocumentService
}

func NewDocumentController(docService DocumentService) *DocumentController {
	return &DocumentController{
		DocService: docService,
	}
}

type submitRequest struct {
	Type   string `json:"type"`
	FileID string `json:"fileId"`
}

// SubmitDocument godoc
// @Summary Attach an uploaded file to an application as a review document
// @Description The file must be uploaded first; only one pending document per type is allowed
// @Tags documents
// @Accept json
// @Produce json
// @Success 201 {object} ApplicationDocument
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/applications/{appId}/documents [post]
func (ctrl *DocumentController) SubmitDocument(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	var req submitRequest
	if err := c.BodyParser(&req); err != nil || req.Type == "" || req.FileID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "type and fileId are required",
		})
	}

	doc, err := ctrl.DocService.Submit(c.UserContext(), SubmitInput{
		ApplicationID: c.Params("appId"),
		Type:          requirement.DocumentType(req.Type),
		FileID:        req.FileID,
		ActorID:       claims.UserID,
		ActorIsAdmin:  claims.IsAdmin(),
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrAppNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "Application not found"})
		case errors.Is(err, ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "error": "Not allowed"})
		case errors.Is(err, ErrFileNotFound), errors.Is(err, ErrInvalidDocument):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error()})
		case errors.Is(err, ErrDuplicatePending):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"error":   "A document of this type is already awaiting review",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Error submitting document"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Document submitted for review",
		"data":    doc,
	})
}

// ListDocuments godoc
// @Summary List an application's documents
// @Tags documents
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/applications/{appId}/documents [get]
func (ctrl *DocumentController) ListDocuments(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	docs, err := ctrl.DocService.ListByApplication(c.UserContext(), c.Params("appId"), claims.UserID, claims.IsAdmin())
	if err != nil {
		switch {
		case errors.Is(err, ErrAppNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "Application not found"})
		case errors.Is(err, ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "error": "Not allowed"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Error retrieving documents"})
	}

	if docs == nil {
		docs = []ApplicationDocument{}
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    docs,
	})
}

// GetProgress godoc
// @Summary Document completion progress for an application
// @Description Percentage over the required catalog entries plus the per-type state
// @Tags documents
// @Produce json
// @Success 200 {object} Progress
// @Router /api/applications/{appId}/progress [get]
func (ctrl *DocumentController) GetProgress(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	progress, err := ctrl.DocService.GetProgress(c.UserContext(), c.Params("appId"), claims.UserID, claims.IsAdmin())
	if err != nil {
		switch {
		case errors.Is(err, ErrAppNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "Application not found"})
		case errors.Is(err, ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "error": "Not allowed"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Error retrieving progress"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    progress,
	})
}

// DeleteDocument godoc
// @Summary Delete an own document while it is still pending
// @Tags documents
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/applications/{appId}/documents/{docId} [delete]
func (ctrl *DocumentController) DeleteDocument(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	err := ctrl.DocService.DeleteOwn(c.UserContext(), c.Params("appId"), c.Params("docId"), claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "Document not found"})
		case errors.Is(err, ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "error": "Not allowed"})
		case errors.Is(err, ErrNotPending):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Error deleting document"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Document deleted",
	})
}

// ListPendingDocuments godoc
// @Summary Review queue of pending documents across all applications
// @Tags documents
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/applications/documents/pending [get]
func (ctrl *DocumentController) ListPendingDocuments(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	docs, total, err := ctrl.DocService.ListPending(c.UserContext(), page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Error retrieving pending documents"})
	}

	if docs == nil {
		docs = []ApplicationDocument{}
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    docs,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": int64(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

type reviewRequest struct {
	Reason  string `json:"reason"`
	Notes   string `json:"notes"`
	Message string `json:"message"`
}

// VerifyDocument godoc
// @Summary Verify a pending document
// @Description Verifying an already-verified document is a no-op
// @Tags documents
// @Accept json
// @Produce json
// @Success 200 {object} ApplicationDocument
// @Failure 409 {object} map[string]interface{}
// @Router /api/applications/{appId}/documents/{docId}/verify [post]
func (ctrl *DocumentController) VerifyDocument(c *fiber.Ctx) error {
	claims, _ := middleware.Claims(c)

	var req reviewRequest
	_ = c.BodyParser(&req)

	doc, err := ctrl.DocService.Verify(c.UserContext(), c.Params("appId"), c.Params("docId"), claims.UserID, req.Notes)
	if err != nil {
		return ctrl.reviewError(c, err, "Error verifying document")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Document verified",
		"data":    doc,
	})
}

// RejectDocument godoc
// @Summary Reject a pending document with a mandatory reason
// @Tags documents
// @Accept json
// @Produce json
// @Success 200 {object} ApplicationDocument
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/applications/{appId}/documents/{docId}/reject [post]
func (ctrl *DocumentController) RejectDocument(c *fiber.Ctx) error {
	claims, _ := middleware.Claims(c)

	var req reviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid request"})
	}

	doc, err := ctrl.DocService.Reject(c.UserContext(), c.Params("appId"), c.Params("docId"), claims.UserID, req.Reason, req.Notes)
	if err != nil {
		return ctrl.reviewError(c, err, "Error rejecting document")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Document rejected",
		"data":    doc,
	})
}

// RequestInfo godoc
// @Summary Ask the applicant for more information about a document
// @Description Sends a notification; the document status is left untouched
// @Tags documents
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/applications/{appId}/documents/{docId}/request-info [post]
func (ctrl *DocumentController) RequestInfo(c *fiber.Ctx) error {
	claims, _ := middleware.Claims(c)

	var req reviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid request"})
	}

	err := ctrl.DocService.RequestInfo(c.UserContext(), c.Params("appId"), c.Params("docId"), claims.UserID, req.Message)
	if err != nil {
		return ctrl.reviewError(c, err, "Error requesting information")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Information requested from applicant",
	})
}

func (ctrl *DocumentController) reviewError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "Document not found"})
	case errors.Is(err, ErrEmptyReason), errors.Is(err, ErrEmptyMessage):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error()})
	case errors.Is(err, ErrAlreadyDecided):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": fallback})
}
