package application

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"innoclub/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ApplicationController struct {
	AppService ApplicationService
}

func NewApplicationController(appService ApplicationService) *ApplicationController {
	return &ApplicationController{
		AppService: appService,
	}
}

// CreateApplication godoc
// @Summary Submit membership application
// @Tags applications
// @Accept json
// @Produce json
// @Success 201 {object} Application
// @Failure 400 {object} map[string]interface{}
// @Router /api/applications [post]
func (ctrl *ApplicationController) CreateApplication(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}
	applicantID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "Invalid user ID"})
	}

	var app Application
	if err := c.BodyParser(&app); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid request"})
	}
	if strings.TrimSpace(app.FullName) == "" || strings.TrimSpace(app.NationalCode) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "full_name and national_code are required",
		})
	}
	app.ID = primitive.NilObjectID
	app.ApplicantID = applicantID
	if app.Email == "" {
		app.Email = claims.Email
	}

	if err := ctrl.AppService.CreateApplication(c.UserContext(), &app); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Error creating application"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Application submitted",
		"data":    app,
	})
}

func parseListQuery(c *fiber.Ctx) ListQuery {
	q := ListQuery{
		Status:     ApplicationStatus(c.Query("status")),
		University: c.Query("university"),
		Major:      c.Query("major"),
		Degree:     c.Query("degree"),
		Search:     c.Query("search"),
	}
	if from, err := parseDate(c.Query("from")); err == nil {
		q.From = from
	}
	if to, err := parseDate(c.Query("to")); err == nil {
		q.To = to
	}
	return q
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListApplications godoc
// @Summary List applications
// @Description Admin listing with status/university/major/degree/date filters and free-text search
// @Tags applications
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/applications [get]
func (ctrl *ApplicationController) ListApplications(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	apps, total, err := ctrl.AppService.ListApplications(c.UserContext(), parseListQuery(c), page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Error retrieving applications"})
	}

	if apps == nil {
		apps = []*Application{}
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    apps,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": int64(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

// GetStats godoc
// @Summary Application counts per status
// @Tags applications
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/applications/stats [get]
func (ctrl *ApplicationController) GetStats(c *fiber.Ctx) error {
	stats, err := ctrl.AppService.Stats(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Error retrieving stats"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    stats,
	})
}

type bulkRequest struct {
	IDs    []string `json:"ids"`
	Reason string   `json:"reason"`
}

// BulkApprove godoc
// @Summary Bulk approve applications
// @Description Best-effort per id; failures are reported per id and do not roll back the rest
// @Tags applications
// @Accept json
// @Produce json
// @Success 200 {object} BulkResult
// @Failure 400 {object} map[string]interface{}
// @Router /api/applications/bulk-approve [post]
func (ctrl *ApplicationController) BulkApprove(c *fiber.Ctx) error {
	return ctrl.bulkUpdate(c, StatusApproved)
}

// BulkReject godoc
// @Summary Bulk reject applications
// @Tags applications
// @Accept json
// @Produce json
// @Success 200 {object} BulkResult
// @Failure 400 {object} map[string]interface{}
// @Router /api/applications/bulk-reject [post]
func (ctrl *ApplicationController) BulkReject(c *fiber.Ctx) error {
	return ctrl.bulkUpdate(c, StatusRejected)
}

func (ctrl *ApplicationController) bulkUpdate(c *fiber.Ctx, status ApplicationStatus) error {
	var req bulkRequest
	if err := c.BodyParser(&req); err != nil || len(req.IDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "ids are required"})
	}

	claims, _ := middleware.Claims(c)

	result, err := ctrl.AppService.BulkUpdateStatus(c.UserContext(), req.IDs, status, req.Reason, claims.UserID)
	if err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, ErrEmptyReason) || errors.Is(err, ErrInvalidStatus) {
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

type exportRequest struct {
	Format  string   `json:"format"`
	Fields  []string `json:"fields"`
	Filters struct {
		Status     string `json:"status"`
		University string `json:"university"`
		Major      string `json:"major"`
		Degree     string `json:"degree"`
		From       string `json:"from"`
		To         string `json:"to"`
		Search     string `json:"search"`
	} `json:"filters"`
}

// ExportApplications godoc
// @Summary Export the filtered application set
// @Description Streams csv, xlsx or pdf with a caller-selected field list
// @Tags applications
// @Accept json
// @Success 200 {file} file "Export content"
// @Failure 400 {object} map[string]interface{}
// @Router /api/applications/export [post]
func (ctrl *ApplicationController) ExportApplications(c *fiber.Ctx) error {
	var req exportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid request"})
	}

	q := ListQuery{
		Status:     ApplicationStatus(req.Filters.Status),
		University: req.Filters.University,
		Major:      req.Filters.Major,
		Degree:     req.Filters.Degree,
		Search:     req.Filters.Search,
	}
	if from, err := parseDate(req.Filters.From); err == nil {
		q.From = from
	}
	if to, err := parseDate(req.Filters.To); err == nil {
		q.To = to
	}

	claims, _ := middleware.Claims(c)

	export, err := ctrl.AppService.Export(c.UserContext(), req.Format, req.Fields, q, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUnknownField) || errors.Is(err, ErrUnsupportedFormat) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Error exporting applications"})
	}

	c.Set(fiber.HeaderContentType, export.ContentType)
	c.Set(fiber.HeaderContentDisposition, "attachment; filename="+export.Filename)
	return c.Send(export.Data)
}
