package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"innoclub/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

// stubExportService fails Export with a configurable error.
type stubExportService struct {
	ApplicationService
	exportErr error
}

func (s *stubExportService) Export(ctx context.Context, format string, fields []string, q ListQuery, actorID string) (*ExportFile, error) {
	if s.exportErr != nil {
		return nil, s.exportErr
	}
	return &ExportFile{Data: []byte("ok"), Filename: "x.csv", ContentType: "text/csv"}, nil
}

func newExportTestApp(svc ApplicationService) *fiber.App {
	ctrl := NewApplicationController(svc)
	app := fiber.New()
	app.Post("/api/applications/export", func(c *fiber.Ctx) error {
		c.Locals(utils.UserClaimsKey, &utils.UserClaims{UserID: "admin-1", Roles: []string{"admin"}})
		return c.Next()
	}, ctrl.ExportApplications)
	return app
}

func postExport(t *testing.T, app *fiber.App, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/applications/export", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp.StatusCode, payload
}

func TestExportEndpointInputErrorsAre400(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "unknown field", err: fmt.Errorf("%w: password", ErrUnknownField)},
		{name: "unsupported format", err: fmt.Errorf("%w: docx", ErrUnsupportedFormat)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newExportTestApp(&stubExportService{exportErr: tt.err})

			status, payload := postExport(t, app, `{"format":"csv"}`)
			if status != fiber.StatusBadRequest {
				t.Errorf("status = %d, want 400", status)
			}
			if payload["success"] != false {
				t.Errorf("success = %v, want false", payload["success"])
			}
		})
	}
}

func TestExportEndpointInternalErrorsAre500(t *testing.T) {
	app := newExportTestApp(&stubExportService{exportErr: errors.New("dial tcp: connection refused")})

	status, payload := postExport(t, app, `{"format":"csv"}`)
	if status != fiber.StatusInternalServerError {
		t.Errorf("status = %d, want 500", status)
	}
	msg, _ := payload["error"].(string)
	if strings.Contains(msg, "connection refused") {
		t.Errorf("error message %q leaks internal detail", msg)
	}
}
