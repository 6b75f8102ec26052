package document

import (
	"innoclub/internal/config"
	"innoclub/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type DocumentApi struct {
	controller *DocumentController
	config     *config.Config
}

func NewDocumentApi(controller *DocumentController, config *config.Config) *DocumentApi {
	return &DocumentApi{
		controller: controller,
		config:     config,
	}
}

func (h *DocumentApi) Setup(app *fiber.App) {
	auth := middleware.AuthMiddleware(h.config.SkipAuth)
	admin := middleware.AdminMiddleware()

	group := app.Group("/api/applications")

	// Review queue first so "documents" is not captured as an :appId
	group.Get("/documents/pending", auth, admin, h.controller.ListPendingDocuments)

	// Applicant side
	group.Post("/:appId/documents", auth, h.controller.SubmitDocument)
	group.Get("/:appId/documents", auth, h.controller.ListDocuments)
	group.Get("/:appId/progress", auth, h.controller.GetProgress)
	group.Delete("/:appId/documents/:docId", auth, h.controller.DeleteDocument)

	// Admin review decisions
	group.Post("/:appId/documents/:docId/verify", auth, admin, h.controller.VerifyDocument)
	group.Post("/:appId/documents/:docId/reject", auth, admin, h.controller.RejectDocument)
	group.Post("/:appId/documents/:docId/request-info", auth, admin, h.controller.RequestInfo)
}
