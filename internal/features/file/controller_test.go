package file

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func seedRegistry(t *testing.T, repo *fakeFileRepo, n int) {
	t.Helper()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 1; i <= n; i++ {
		record := &StoredFile{
			Filename:  fmt.Sprintf("f%02d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Save(context.Background(), record); err != nil {
			t.Fatalf("failed to seed record %d: %v", i, err)
		}
	}
}

func TestListFilesPaginationEnvelope(t *testing.T) {
	repo := newFakeFileRepo()
	svc, cfg := newTestService(t, repo)
	seedRegistry(t, repo, 25)

	ctrl := NewFileController(svc, cfg)
	app := fiber.New()
	app.Get("/api/files", ctrl.ListFiles)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/files?page=2&limit=10", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var payload struct {
		Success    bool         `json:"success"`
		Data       []StoredFile `json:"data"`
		Pagination struct {
			Page  int64 `json:"page"`
			Limit int64 `json:"limit"`
			Total int64 `json:"total"`
			Pages int64 `json:"pages"`
		} `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(payload.Data) != 10 {
		t.Errorf("page 2 has %d records, want 10", len(payload.Data))
	}
	if payload.Pagination.Page != 2 || payload.Pagination.Limit != 10 {
		t.Errorf("pagination = %+v, want page 2 limit 10", payload.Pagination)
	}
	if payload.Pagination.Total != 25 {
		t.Errorf("total = %d, want 25", payload.Pagination.Total)
	}
	if payload.Pagination.Pages != 3 {
		t.Errorf("pages = %d, want ceil(25/10) = 3", payload.Pagination.Pages)
	}

	// Newest first: page 2 starts at the 11th newest, which is f15
	if payload.Data[0].Filename != "f15" {
		t.Errorf("first record on page 2 = %q, want f15", payload.Data[0].Filename)
	}
	if payload.Data[9].Filename != "f06" {
		t.Errorf("last record on page 2 = %q, want f06", payload.Data[9].Filename)
	}
}

func TestListFilesRelationPairRequired(t *testing.T) {
	repo := newFakeFileRepo()
	svc, cfg := newTestService(t, repo)

	ctrl := NewFileController(svc, cfg)
	app := fiber.New()
	app.Get("/api/files", ctrl.ListFiles)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/files?relatedType=team", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
