package application

import (
	"innoclub/internal/config"
	"innoclub/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ApplicationApi struct {
	controller *ApplicationController
	config     *config.Config
}

func NewApplicationApi(controller *ApplicationController, config *config.Config) *ApplicationApi {
	return &ApplicationApi{
		controller: controller,
		config:     config,
	}
}

func (h *ApplicationApi) Setup(app *fiber.App) {
	auth := middleware.AuthMiddleware(h.config.SkipAuth)
	admin := middleware.AdminMiddleware()

	group := app.Group("/api/applications")

	// Applicant side
	group.Post("/", auth, h.controller.CreateApplication)

	// Admin dashboard
	group.Get("/stats", auth, admin, h.controller.GetStats)
	group.Get("/", auth, admin, h.controller.ListApplications)
	group.Post("/bulk-approve", auth, admin, h.controller.BulkApprove)
	group.Post("/bulk-reject", auth, admin, h.controller.BulkReject)
	group.Post("/export", auth, admin, h.controller.ExportApplications)
}
