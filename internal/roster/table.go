package roster

import "strings"

// Table is the full roster for one gateway: every mutation is a whole-table
// read-modify-write, there is no partial-row update primitive.
type Table struct {
	// ExtraColumns preserves the order of pass-through columns that are not
	// part of the canonical set, so re-saving a table round-trips them.
	ExtraColumns []string
	Records      []MemberRecord
}

// Columns returns the canonical column order followed by pass-through columns.
func (t Table) Columns() []string {
	out := CanonicalColumns()
	return append(out, t.ExtraColumns...)
}

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	out := Table{}
	if t.ExtraColumns != nil {
		out.ExtraColumns = make([]string, len(t.ExtraColumns))
		copy(out.ExtraColumns, t.ExtraColumns)
	}
	if t.Records != nil {
		out.Records = make([]MemberRecord, len(t.Records))
		for i, rec := range t.Records {
			out.Records[i] = rec.Clone()
		}
	}
	return out
}

// FindByQRID returns the index of the record whose QR id matches the trimmed
// lookup key, or -1.
func (t Table) FindByQRID(qrID string) int {
	needle := strings.TrimSpace(qrID)
	for i, rec := range t.Records {
		if strings.TrimSpace(rec.QRID) == needle {
			return i
		}
	}
	return -1
}

// CountScannedOn returns how many records were last scanned on the given UTC
// calendar date.
func (t Table) CountScannedOn(day string) int {
	count := 0
	for _, rec := range t.Records {
		if rec.ScannedOn(day) {
			count++
		}
	}
	return count
}

// AddExtraColumn appends a pass-through column if it is not already tracked.
func (t *Table) AddExtraColumn(name string) {
	if name == "" || IsCanonicalColumn(name) {
		return
	}
	for _, col := range t.ExtraColumns {
		if col == name {
			return
		}
	}
	t.ExtraColumns = append(t.ExtraColumns, name)
}

// Snapshot is an uploaded roster in tabular form: an ordered column list plus
// one map per data row. Parsing the raw file format happens at the ingest
// boundary; the merge engine only ever sees this shape.
type Snapshot struct {
	Columns []string
	Rows    []map[string]string
}

// HasColumn reports whether the snapshot carries the named column.
func (s Snapshot) HasColumn(name string) bool {
	for _, col := range s.Columns {
		if col == name {
			return true
		}
	}
	return false
}

// MissingRequiredColumns lists required columns absent from the snapshot.
func (s Snapshot) MissingRequiredColumns() []string {
	var missing []string
	for _, col := range RequiredColumns {
		if !s.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	return missing
}
