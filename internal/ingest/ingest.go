package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/priyamadhavan/gatekeeper-backend/internal/roster"
	pkgerrors "github.com/priyamadhavan/gatekeeper-backend/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// Parse turns an uploaded tabular file into a roster snapshot. The first row
// is the header; empty cells load as "". The merge engine never sees raw
// file bytes, only the snapshot this produces.
func Parse(fileName string, r io.Reader) (roster.Snapshot, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx":
		return parseXLSX(r)
	case ".csv":
		return parseCSV(r)
	default:
		return roster.Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "unsupported file type").
			WithDetails(map[string]any{"file_name": fileName, "supported": []string{".xlsx", ".csv"}})
	}
}

func parseXLSX(r io.Reader) (roster.Snapshot, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return roster.Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid xlsx file")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return roster.Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "xlsx file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return roster.Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading xlsx rows")
	}
	return buildSnapshot(rows)
}

func parseCSV(r io.Reader) (roster.Snapshot, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return roster.Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid csv file")
	}
	return buildSnapshot(rows)
}

func buildSnapshot(rows [][]string) (roster.Snapshot, error) {
	if len(rows) == 0 {
		return roster.Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "file has no header row")
	}

	var columns []string
	for _, col := range rows[0] {
		col = strings.TrimSpace(col)
		if col == "" {
			continue
		}
		columns = append(columns, col)
	}
	if len(columns) == 0 {
		return roster.Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "file has no usable columns")
	}

	snapshot := roster.Snapshot{Columns: columns}
	for _, cells := range rows[1:] {
		if isEmptyRow(cells) {
			continue
		}
		row := make(map[string]string, len(columns))
		idx := 0
		for _, col := range rows[0] {
			trimmed := strings.TrimSpace(col)
			if trimmed == "" {
				idx++
				continue
			}
			if idx < len(cells) {
				row[trimmed] = cells[idx]
			} else {
				row[trimmed] = ""
			}
			idx++
		}
		snapshot.Rows = append(snapshot.Rows, row)
	}
	return snapshot, nil
}

func isEmptyRow(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Describe names the snapshot for log lines without dumping rows.
func Describe(s roster.Snapshot) string {
	return fmt.Sprintf("%d columns, %d rows", len(s.Columns), len(s.Rows))
}
