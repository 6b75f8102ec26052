package requirement

import (
	"github.com/gofiber/fiber/v2"
)

type RequirementApi struct{}

func NewRequirementApi() *RequirementApi {
	return &RequirementApi{}
}

func (h *RequirementApi) Setup(app *fiber.App) {
	app.Get("/api/requirements", h.List)
}

// List godoc
// @Summary Document requirement catalog
// @Tags requirements
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/requirements [get]
func (h *RequirementApi) List(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    Catalog(),
	})
}
