package ingest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/priyamadhavan/gatekeeper-backend/internal/roster"
	pkgerrors "github.com/priyamadhavan/gatekeeper-backend/pkg/errors"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf
}

func TestParseXLSX(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{roster.ColName, roster.ColQRID, "Blood Group"},
		{"Anita Rao", "NW-001-000001", "O+"},
		{"Vikram Shetty", "SW-002-000002", ""},
	})

	snapshot, err := Parse("roster.xlsx", buf)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(snapshot.Columns) != 3 {
		t.Fatalf("expected 3 columns, got %v", snapshot.Columns)
	}
	if len(snapshot.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(snapshot.Rows))
	}
	if snapshot.Rows[0][roster.ColQRID] != "NW-001-000001" {
		t.Fatalf("unexpected first row %v", snapshot.Rows[0])
	}
	if snapshot.Rows[0]["Blood Group"] != "O+" {
		t.Fatalf("pass-through column lost: %v", snapshot.Rows[0])
	}
	// Trailing empty cells are dropped by the sheet reader and must load as "".
	if got, ok := snapshot.Rows[1]["Blood Group"]; !ok || got != "" {
		t.Fatalf("short row should pad with empty string, got %v", snapshot.Rows[1])
	}
}

func TestParseXLSXSkipsBlankRows(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{roster.ColName, roster.ColQRID},
		{"", ""},
		{"Anita Rao", "NW-001-000001"},
	})

	snapshot, err := Parse("roster.xlsx", buf)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(snapshot.Rows) != 1 {
		t.Fatalf("expected blank row skipped, got %d rows", len(snapshot.Rows))
	}
}

func TestParseCSV(t *testing.T) {
	data := "Name,QR Code ID\nAnita Rao,NW-001-000001\nVikram Shetty,SW-002-000002\n"

	snapshot, err := Parse("roster.csv", strings.NewReader(data))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(snapshot.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(snapshot.Rows))
	}
	if snapshot.Rows[1][roster.ColName] != "Vikram Shetty" {
		t.Fatalf("unexpected row %v", snapshot.Rows[1])
	}
}

func TestParseUnsupportedExtension(t *testing.T) {
	_, err := Parse("roster.pdf", strings.NewReader("whatever"))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseInvalidXLSXBytes(t *testing.T) {
	_, err := Parse("roster.xlsx", strings.NewReader("not a zip archive"))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseHeaderOnlyFile(t *testing.T) {
	snapshot, err := Parse("roster.csv", strings.NewReader("Name,QR Code ID\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(snapshot.Rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(snapshot.Rows))
	}
}

func TestParseEmptyFile(t *testing.T) {
	_, err := Parse("roster.csv", strings.NewReader(""))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
