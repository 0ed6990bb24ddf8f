package gateways

import (
	"context"
	"time"

	"github.com/priyamadhavan/gatekeeper-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes gateway registry persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a gateways repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new gateway row.
func (r *Repository) Create(ctx context.Context, gateway *models.Gateway) error {
	return r.db.WithContext(ctx).Create(gateway).Error
}

// FindByID retrieves a gateway by its case-sensitive id.
func (r *Repository) FindByID(ctx context.Context, gatewayID string) (*models.Gateway, error) {
	var gateway models.Gateway
	if err := r.db.WithContext(ctx).First(&gateway, "gateway_id = ?", gatewayID).Error; err != nil {
		return nil, err
	}
	return &gateway, nil
}

// Exists reports whether the gateway id is registered.
func (r *Repository) Exists(ctx context.Context, gatewayID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Gateway{}).
		Where("gateway_id = ?", gatewayID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns every registered gateway, newest registration first.
func (r *Repository) List(ctx context.Context) ([]models.Gateway, error) {
	var gateways []models.Gateway
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&gateways).Error; err != nil {
		return nil, err
	}
	return gateways, nil
}

// ListActive returns active gateways, newest registration first.
func (r *Repository) ListActive(ctx context.Context) ([]models.Gateway, error) {
	var gateways []models.Gateway
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&gateways).Error
	if err != nil {
		return nil, err
	}
	return gateways, nil
}

// RecordSync stamps the gateway's last sync time and marks it active.
func (r *Repository) RecordSync(ctx context.Context, gatewayID string, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Gateway{}).
		Where("gateway_id = ?", gatewayID).
		Updates(map[string]any{
			"last_sync_at": now.UTC(),
			"is_active":    true,
		}).Error
}

// Deactivate marks the gateway inactive; gateways are never deleted.
func (r *Repository) Deactivate(ctx context.Context, gatewayID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Gateway{}).
		Where("gateway_id = ?", gatewayID).
		UpdateColumn("is_active", false).Error
}
