package gateways

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/priyamadhavan/gatekeeper-backend/pkg/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupGatewaysTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "registry.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Gateway{}))
	return db
}

func TestRepositoryCreateAndFind(t *testing.T) {
	repo := NewRepository(setupGatewaysTestDB(t))
	ctx := context.Background()

	gateway := &models.Gateway{
		GatewayID:   "main-entrance",
		GatewayName: "Main Entrance",
		Location:    "Block A",
		IsActive:    true,
	}
	require.NoError(t, repo.Create(ctx, gateway))

	found, err := repo.FindByID(ctx, "main-entrance")
	require.NoError(t, err)
	assert.Equal(t, "Main Entrance", found.GatewayName)
	assert.True(t, found.IsActive)

	exists, err := repo.Exists(ctx, "main-entrance")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepositoryFindMissingReturnsRecordNotFound(t *testing.T) {
	repo := NewRepository(setupGatewaysTestDB(t))

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListActive(t *testing.T) {
	repo := NewRepository(setupGatewaysTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Gateway{GatewayID: "a", GatewayName: "A", IsActive: true}))
	require.NoError(t, repo.Create(ctx, &models.Gateway{GatewayID: "b", GatewayName: "B", IsActive: true}))
	require.NoError(t, repo.Deactivate(ctx, "b"))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "a", active[0].GatewayID)
}

func TestRepositoryRecordSyncStampsAndReactivates(t *testing.T) {
	repo := NewRepository(setupGatewaysTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Gateway{GatewayID: "gw", GatewayName: "Gate", IsActive: true}))
	require.NoError(t, repo.Deactivate(ctx, "gw"))

	now := time.Date(2026, 8, 30, 7, 0, 0, 0, time.UTC)
	require.NoError(t, repo.RecordSync(ctx, "gw", now))

	found, err := repo.FindByID(ctx, "gw")
	require.NoError(t, err)
	assert.True(t, found.IsActive)
	require.NotNil(t, found.LastSyncAt)
	assert.True(t, found.LastSyncAt.Equal(now))
}
