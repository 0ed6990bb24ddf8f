package roster

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Canonical column names shared with uploaded snapshots and the UI. These are
// mapping keys, not positional columns, so casing and spacing are exact.
const (
	ColName               = "Name"
	ColDesignation        = "Designation"
	ColConstituency       = "Constituency"
	ColConstituencyNumber = "Constituency Number"
	ColMobileNumber       = "Mobile Number"
	ColQRID               = "QR Code ID"
	ColLastScannedAt      = "Last Scanned At"
	ColScanCount          = "Scan Count"
	ColUploadDate         = "Upload Date"
)

// RequiredColumns must be present in any uploaded snapshot.
var RequiredColumns = []string{ColName, ColQRID}

var canonicalColumns = []string{
	ColName,
	ColDesignation,
	ColConstituency,
	ColConstituencyNumber,
	ColMobileNumber,
	ColQRID,
	ColLastScannedAt,
	ColScanCount,
	ColUploadDate,
}

// CanonicalColumns returns the fixed column order for roster tables.
func CanonicalColumns() []string {
	out := make([]string, len(canonicalColumns))
	copy(out, canonicalColumns)
	return out
}

// IsCanonicalColumn reports whether name is one of the recognized columns.
func IsCanonicalColumn(name string) bool {
	for _, col := range canonicalColumns {
		if col == name {
			return true
		}
	}
	return false
}

// MemberRecord is one registered person in a gateway's roster. ScanCount only
// moves forward: it counts accepted scans over the record's lifetime and is
// preserved across bulk merges.
type MemberRecord struct {
	Name               string
	Designation        string
	Constituency       string
	ConstituencyNumber string
	MobileNumber       string
	QRID               string
	LastScannedAt      *time.Time
	ScanCount          int
	UploadDate         *time.Time
	Extra              map[string]string
}

// Clone returns a deep copy of the record.
func (r MemberRecord) Clone() MemberRecord {
	out := r
	if r.LastScannedAt != nil {
		ts := *r.LastScannedAt
		out.LastScannedAt = &ts
	}
	if r.UploadDate != nil {
		ts := *r.UploadDate
		out.UploadDate = &ts
	}
	if r.Extra != nil {
		out.Extra = make(map[string]string, len(r.Extra))
		for k, v := range r.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// CellValue renders the record's value for the named column.
func (r MemberRecord) CellValue(column string) string {
	switch column {
	case ColName:
		return r.Name
	case ColDesignation:
		return r.Designation
	case ColConstituency:
		return r.Constituency
	case ColConstituencyNumber:
		return r.ConstituencyNumber
	case ColMobileNumber:
		return r.MobileNumber
	case ColQRID:
		return r.QRID
	case ColLastScannedAt:
		return formatTimestamp(r.LastScannedAt)
	case ColScanCount:
		return strconv.Itoa(r.ScanCount)
	case ColUploadDate:
		return formatTimestamp(r.UploadDate)
	default:
		return r.Extra[column]
	}
}

// MarshalJSON renders the record under its canonical column names so API
// consumers see the same keys as uploaded snapshots.
func (r MemberRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(canonicalColumns)+len(r.Extra))
	out[ColName] = r.Name
	out[ColDesignation] = r.Designation
	out[ColConstituency] = r.Constituency
	out[ColConstituencyNumber] = r.ConstituencyNumber
	out[ColMobileNumber] = r.MobileNumber
	out[ColQRID] = r.QRID
	out[ColLastScannedAt] = formatTimestamp(r.LastScannedAt)
	out[ColScanCount] = r.ScanCount
	out[ColUploadDate] = formatTimestamp(r.UploadDate)
	for k, v := range r.Extra {
		out[k] = v
	}
	return json.Marshal(out)
}

// RecordFromRow builds a record from a snapshot row keyed by column name.
// Unparseable timestamps load as never-scanned and a malformed count loads
// as zero, matching how the sheet treats blank cells.
func RecordFromRow(row map[string]string) MemberRecord {
	rec := MemberRecord{
		Name:               strings.TrimSpace(row[ColName]),
		Designation:        strings.TrimSpace(row[ColDesignation]),
		Constituency:       strings.TrimSpace(row[ColConstituency]),
		ConstituencyNumber: strings.TrimSpace(row[ColConstituencyNumber]),
		MobileNumber:       strings.TrimSpace(row[ColMobileNumber]),
		QRID:               strings.TrimSpace(row[ColQRID]),
		LastScannedAt:      parseTimestamp(row[ColLastScannedAt]),
		ScanCount:          parseCount(row[ColScanCount]),
		UploadDate:         parseTimestamp(row[ColUploadDate]),
	}
	for col, val := range row {
		if IsCanonicalColumn(col) {
			continue
		}
		if rec.Extra == nil {
			rec.Extra = map[string]string{}
		}
		rec.Extra[col] = val
	}
	return rec
}

func formatTimestamp(ts *time.Time) string {
	if ts == nil {
		return ""
	}
	return ts.UTC().Format(time.RFC3339)
}

func parseTimestamp(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &ts
}

func parseCount(raw string) int {
	count, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || count < 0 {
		return 0
	}
	return count
}

// UTCDate truncates a timestamp to its calendar date under the UTC boundary.
func UTCDate(ts time.Time) string {
	return ts.UTC().Format("2006-01-02")
}

// ScannedOn reports whether the record's last accepted scan falls on the
// given UTC calendar date.
func (r MemberRecord) ScannedOn(day string) bool {
	return r.LastScannedAt != nil && UTCDate(*r.LastScannedAt) == day
}
