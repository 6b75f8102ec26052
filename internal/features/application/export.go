package application

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"time"

	"innoclub/internal/features/audit"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const exportMaxRows = 10000

// Export input errors; anything else coming out of Export is internal.
var (
	ErrUnknownField      = errors.New("unknown export field")
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// ExportFile is a rendered export ready to stream to the caller.
type ExportFile struct {
	Data        []byte
	Filename    string
	ContentType string
}

type exportColumn struct {
	Field string
	Label string
}

// Caller-selected field lists are restricted to this set.
var exportColumns = []exportColumn{
	{"full_name", "نام و نام خانوادگی"},
	{"email", "ایمیل"},
	{"national_code", "کد ملی"},
	{"university", "دانشگاه"},
	{"major", "رشته تحصیلی"},
	{"degree", "مقطع"},
	{"status", "وضعیت"},
	{"submitted_at", "تاریخ ثبت"},
}

func resolveColumns(fields []string) ([]exportColumn, error) {
	if len(fields) == 0 {
		return exportColumns, nil
	}
	byField := make(map[string]exportColumn, len(exportColumns))
	for _, col := range exportColumns {
		byField[col.Field] = col
	}

	var cols []exportColumn
	for _, f := range fields {
		col, ok := byField[f]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, f)
		}
		cols = append(cols, col)
	}
	return cols, nil
}

func columnValue(app *Application, field string) string {
	switch field {
	case "full_name":
		return app.FullName
	case "email":
		return app.Email
	case "national_code":
		return app.NationalCode
	case "university":
		return app.University
	case "major":
		return app.Major
	case "degree":
		return app.Degree
	case "status":
		return string(app.Status)
	case "submitted_at":
		return app.SubmittedAt.Format("2006-01-02 15:04")
	}
	return ""
}

func buildRows(apps []*Application, cols []exportColumn) (headers []string, rows [][]string) {
	for _, col := range cols {
		headers = append(headers, col.Label)
	}
	for _, app := range apps {
		row := make([]string, 0, len(cols))
		for _, col := range cols {
			row = append(row, columnValue(app, col.Field))
		}
		rows = append(rows, row)
	}
	return headers, rows
}

// Export renders the filtered application set in the requested format with a
// caller-selected column list.
func (s *ApplicationServiceImpl) Export(ctx context.Context, format string, fields []string, q ListQuery, actorID string) (*ExportFile, error) {
	cols, err := resolveColumns(fields)
	if err != nil {
		return nil, err
	}

	apps, err := s.AppRepo.ListAll(ctx, q, exportMaxRows)
	if err != nil {
		s.Logger.Error("export query failed", zap.Error(err))
		return nil, err
	}

	headers, rows := buildRows(apps, cols)
	stamp := time.Now().Format("2006-01-02")

	var out *ExportFile
	switch format {
	case "csv":
		data, err := exportCSV(headers, rows)
		if err != nil {
			s.Logger.Error("csv render failed", zap.Error(err))
			return nil, err
		}
		out = &ExportFile{Data: data, Filename: "applications_" + stamp + ".csv", ContentType: "text/csv"}
	case "xlsx":
		data, err := exportExcel(headers, rows)
		if err != nil {
			s.Logger.Error("xlsx render failed", zap.Error(err))
			return nil, err
		}
		out = &ExportFile{
			Data:        data,
			Filename:    "applications_" + stamp + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		}
	case "pdf":
		data, err := exportPDF(headers, rows, s.Config.PDFFontPath)
		if err != nil {
			s.Logger.Error("pdf render failed", zap.Error(err))
			return nil, err
		}
		out = &ExportFile{Data: data, Filename: "applications_" + stamp + ".pdf", ContentType: "application/pdf"}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	_ = s.AuditService.LogChange(ctx, audit.AuditActionExport, "applications",
		fmt.Sprintf("%d rows", len(rows)), actorID, nil)

	return out, nil
}

func exportCSV(headers []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	// BOM so Excel opens Persian text correctly
	buf.WriteString("\xEF\xBB\xBF")

	writer := csv.NewWriter(&buf)
	if err := writer.Write(headers); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exportExcel(headers []string, rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Applications"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for rowIdx, row := range rows {
		for colIdx, val := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheet, cell, val)
		}
	}

	for i := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, 22)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exportPDF(headers []string, rows [][]string, fontPath string) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")

	font := "Helvetica"
	if fontPath != "" {
		// Core fonts cannot render Persian; an injected UTF-8 TTF can
		pdf.AddUTF8Font("export", "", fontPath)
		font = "export"
	}
	pdf.SetFont(font, "", 9)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colW := (pageW - left - right) / float64(len(headers))

	pdf.SetFillColor(224, 224, 224)
	for _, h := range headers {
		pdf.CellFormat(colW, 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	for _, row := range rows {
		for _, val := range row {
			pdf.CellFormat(colW, 7, val, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
