package file

import (
	"innoclub/internal/config"
	"innoclub/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type FileApi struct {
	controller *FileController
	config     *config.Config
}

func NewFileApi(controller *FileController, config *config.Config) *FileApi {
	return &FileApi{
		controller: controller,
		config:     config,
	}
}

func (h *FileApi) Setup(app *fiber.App) {
	group := app.Group("/api/files")

	// Uploads may be anonymous; deletion never is.
	group.Post("/upload", middleware.OptionalAuthMiddleware(), h.controller.UploadFile)
	group.Post("/upload/multiple", middleware.OptionalAuthMiddleware(), h.controller.UploadMultiple)
	group.Get("/download/:filename", h.controller.DownloadFile)
	group.Get("/view/:id", h.controller.ViewFile)
	group.Get("/", h.controller.ListFiles)
	group.Get("/:id", h.controller.GetFile)
	group.Delete("/:id", middleware.AuthMiddleware(h.config.SkipAuth), h.controller.DeleteFile)

	app.Static(h.config.FSURL, h.config.FSPath)
}
