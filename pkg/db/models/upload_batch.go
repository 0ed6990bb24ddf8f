package models

import (
	"time"

	dbtypes "github.com/priyamadhavan/gatekeeper-backend/pkg/db/types"
)

// UploadBatch is the immutable record of one completed bulk merge. Rows are
// appended after a merge persists and never mutated or deleted.
type UploadBatch struct {
	BatchID           string              `gorm:"column:batch_id;primaryKey" json:"batch_id"`
	GatewayID         string              `gorm:"column:gateway_id;not null;index" json:"gateway_id"`
	FileName          string              `gorm:"column:file_name" json:"file_name"`
	UploadDate        time.Time           `gorm:"column:upload_date;not null" json:"upload_date"`
	TotalRecords      int                 `gorm:"column:total_records;not null;default:0" json:"total_records"`
	SuccessfulRecords int                 `gorm:"column:successful_records;not null;default:0" json:"successful_records"`
	FailedRecords     int                 `gorm:"column:failed_records;not null;default:0" json:"failed_records"`
	Errors            dbtypes.StringSlice `gorm:"column:errors;type:text" json:"errors"`
}

// TableName keeps the table naming aligned with the ledger schema.
func (UploadBatch) TableName() string {
	return "upload_batches"
}
