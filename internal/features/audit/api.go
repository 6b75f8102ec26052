package audit

import (
	"strconv"

	"innoclub/internal/config"
	"innoclub/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuditApi struct {
	service AuditService
	config  *config.Config
}

func NewAuditApi(service AuditService, config *config.Config) *AuditApi {
	return &AuditApi{
		service: service,
		config:  config,
	}
}

func (h *AuditApi) Setup(app *fiber.App) {
	group := app.Group("/api/audit", middleware.AuthMiddleware(h.config.SkipAuth), middleware.AdminMiddleware())

	group.Get("/", h.List)
}

// List godoc
// @Summary Recent audit entries
// @Tags audit
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/audit [get]
func (h *AuditApi) List(c *fiber.Ctx) error {
	limit, _ := strconv.ParseInt(c.Query("limit", "50"), 10, 64)
	if limit < 1 || limit > 500 {
		limit = 50
	}

	logs, err := h.service.Recent(c.UserContext(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Error retrieving audit logs",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    logs,
	})
}
