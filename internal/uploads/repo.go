package uploads

import (
	"context"

	"github.com/priyamadhavan/gatekeeper-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists the append-only upload history ledger.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an uploads repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Append inserts one completed batch record. Batches are immutable once
// written; there is deliberately no update or delete.
func (r *Repository) Append(ctx context.Context, batch *models.UploadBatch) error {
	return r.db.WithContext(ctx).Create(batch).Error
}

// ListByGateway returns the gateway's batches newest first.
func (r *Repository) ListByGateway(ctx context.Context, gatewayID string) ([]models.UploadBatch, error) {
	var batches []models.UploadBatch
	err := r.db.WithContext(ctx).
		Where("gateway_id = ?", gatewayID).
		Order("upload_date DESC").
		Order("batch_id DESC").
		Find(&batches).Error
	if err != nil {
		return nil, err
	}
	return batches, nil
}
