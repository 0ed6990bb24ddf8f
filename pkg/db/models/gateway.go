package models

import (
	"time"
)

// Gateway is one physical scanning checkpoint. Gateways are registered once,
// refreshed on sync, and deactivated rather than deleted.
type Gateway struct {
	GatewayID   string     `gorm:"column:gateway_id;primaryKey" json:"gateway_id"`
	GatewayName string     `gorm:"column:gateway_name;not null" json:"gateway_name"`
	Location    string     `gorm:"column:location" json:"location"`
	IsActive    bool       `gorm:"column:is_active;not null;default:true" json:"is_active"`
	LastSyncAt  *time.Time `gorm:"column:last_sync_at" json:"last_sync_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName keeps the table naming aligned with the registry schema.
func (Gateway) TableName() string {
	return "gateways"
}
