package roster

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV renders the table with its header row. The same encoding backs
// the durable file store and roster exports.
func WriteCSV(w io.Writer, table Table) error {
	writer := csv.NewWriter(w)
	columns := table.Columns()
	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(columns))
	for _, rec := range table.Records {
		for i, col := range columns {
			row[i] = rec.CellValue(col)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadCSV parses a table previously written by WriteCSV. The header row is
// required and must carry the QR id column.
func ReadCSV(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("parse table: %w", err)
	}
	if len(rows) == 0 {
		return Table{}, fmt.Errorf("parse table: missing header row")
	}

	header := rows[0]
	hasQRID := false
	table := Table{}
	for _, col := range header {
		if col == ColQRID {
			hasQRID = true
		}
		table.AddExtraColumn(col)
	}
	if !hasQRID {
		return Table{}, fmt.Errorf("parse table: header missing %q column", ColQRID)
	}

	for _, cells := range rows[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if col == "" {
				continue
			}
			if i < len(cells) {
				row[col] = cells[i]
			} else {
				row[col] = ""
			}
		}
		table.Records = append(table.Records, RecordFromRow(row))
	}
	return table, nil
}
