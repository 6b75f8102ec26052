package application

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"innoclub/internal/features/audit"
)

func exportFixtures() []*Application {
	submitted := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	return []*Application{
		{
			FullName:     "سارا محمدی",
			Email:        "sara@example.com",
			NationalCode: "0012345678",
			University:   "تهران",
			Major:        "مهندسی کامپیوتر",
			Degree:       "کارشناسی",
			Status:       StatusApproved,
			SubmittedAt:  submitted,
		},
		{
			FullName:     "علی رضایی",
			Email:        "ali@example.com",
			NationalCode: "0087654321",
			University:   "شریف",
			Major:        "برق",
			Degree:       "ارشد",
			Status:       StatusPending,
			SubmittedAt:  submitted,
		},
	}
}

func TestResolveColumns(t *testing.T) {
	tests := []struct {
		name    string
		fields  []string
		wantLen int
		wantErr bool
	}{
		{name: "empty means all columns", fields: nil, wantLen: len(exportColumns)},
		{name: "subset", fields: []string{"full_name", "status"}, wantLen: 2},
		{name: "unknown field", fields: []string{"full_name", "password"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols, err := resolveColumns(tt.fields)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolveColumns() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && len(cols) != tt.wantLen {
				t.Errorf("resolveColumns() returned %d columns, want %d", len(cols), tt.wantLen)
			}
		})
	}
}

func TestExportCSV(t *testing.T) {
	apps := exportFixtures()
	headers, rows := buildRows(apps, exportColumns)

	data, err := exportCSV(headers, rows)
	if err != nil {
		t.Fatalf("exportCSV() error = %v", err)
	}

	if !bytes.HasPrefix(data, []byte("\xEF\xBB\xBF")) {
		t.Error("CSV missing UTF-8 BOM")
	}

	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xEF\xBB\xBF"))))
	records, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("failed to parse generated CSV: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("CSV has %d rows, want header + 2", len(records))
	}
	if records[0][0] != "نام و نام خانوادگی" {
		t.Errorf("first header = %q, want the Persian name label", records[0][0])
	}
	if records[1][1] != "sara@example.com" {
		t.Errorf("email cell = %q, want sara@example.com", records[1][1])
	}
	if records[2][6] != string(StatusPending) {
		t.Errorf("status cell = %q, want %q", records[2][6], StatusPending)
	}
	if records[1][7] != "2026-03-14 10:30" {
		t.Errorf("submitted cell = %q, want formatted timestamp", records[1][7])
	}
}

func TestExportExcel(t *testing.T) {
	apps := exportFixtures()
	headers, rows := buildRows(apps, exportColumns)

	data, err := exportExcel(headers, rows)
	if err != nil {
		t.Fatalf("exportExcel() error = %v", err)
	}
	// xlsx files are zip containers
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Error("xlsx output is not a zip container")
	}
}

func TestExportPDF(t *testing.T) {
	apps := exportFixtures()
	cols, _ := resolveColumns([]string{"email", "status"})
	headers, rows := buildRows(apps, cols)

	data, err := exportPDF(headers, rows, "")
	if err != nil {
		t.Fatalf("exportPDF() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("pdf output missing %PDF header")
	}
}

func TestExportUnsupportedFormat(t *testing.T) {
	repo := newFakeAppRepo()
	svc, _, _ := newAppTestService(repo)

	_, err := svc.Export(context.Background(), "docx", nil, ListQuery{}, "admin-1")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Export() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestExportUnknownFieldSentinel(t *testing.T) {
	repo := newFakeAppRepo()
	svc, _, _ := newAppTestService(repo)

	_, err := svc.Export(context.Background(), "csv", []string{"password"}, ListQuery{}, "admin-1")
	if !errors.Is(err, ErrUnknownField) {
		t.Errorf("Export() error = %v, want ErrUnknownField", err)
	}
}

func TestExportInternalFailureIsNotAnInputError(t *testing.T) {
	repo := newFakeAppRepo()
	repo.listAllErr = errors.New("connection reset")
	svc, _, _ := newAppTestService(repo)

	_, err := svc.Export(context.Background(), "csv", nil, ListQuery{}, "admin-1")
	if err == nil {
		t.Fatal("Export() expected error, got nil")
	}
	if errors.Is(err, ErrUnknownField) || errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("internal failure %v must not map to an input error", err)
	}
}

func TestExportWritesAuditEntry(t *testing.T) {
	repo := newFakeAppRepo()
	svc, _, audits := newAppTestService(repo)
	seedApplication(repo, "one")

	out, err := svc.Export(context.Background(), "csv", []string{"full_name"}, ListQuery{}, "admin-1")
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if out.ContentType != "text/csv" {
		t.Errorf("ContentType = %q, want text/csv", out.ContentType)
	}
	if !strings.HasSuffix(out.Filename, ".csv") {
		t.Errorf("Filename = %q, want .csv suffix", out.Filename)
	}
	if len(audits.logged) != 1 || audits.logged[0] != audit.AuditActionExport {
		t.Errorf("audit entries = %v, want one EXPORT entry", audits.logged)
	}
}
