package assets

import (
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/xid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"vwa-api/pkg/cache"
	"vwa-api/pkg/config"
	"vwa-api/pkg/database"
	"vwa-api/pkg/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", xid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func newTestRegistry(t *testing.T) (*Registry, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	return NewRegistry(db, nil, time.Minute), db
}

func newTestCache(t *testing.T) *cache.Cache {
	t.Helper()

	mr := miniredis.RunT(t)
	cfg := &config.Config{}
	cfg.Redis.Host = mr.Host()
	cfg.Redis.Port = mr.Port()

	c, err := cache.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func createTestUser(t *testing.T, db *gorm.DB, wallet string) *models.User {
	t.Helper()

	user := models.User{WalletAddress: wallet, IsActive: true}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func TestRegistry_CreateAndGet(t *testing.T) {
	registry, db := newTestRegistry(t)
	owner := createTestUser(t, db, "wallet-owner")

	asset, err := registry.Create(owner.ID, CreateInput{
		AssetType:     models.AssetTypeGold,
		Weight:        decimal.NewFromFloat(10.5),
		Purity:        decimal.NewFromFloat(0.999),
		Certification: models.StringPtr("LBMA-1234"),
		CurrentPrice:  decimal.NewFromInt(2000),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, asset.ID)
	assert.True(t, asset.IsActive)

	got, err := registry.Get(asset.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AssetTypeGold, got.AssetType)
	assert.True(t, got.Weight.Equal(decimal.NewFromFloat(10.5)))
	assert.True(t, got.CurrentPrice.Equal(decimal.NewFromInt(2000)))
}

func TestRegistry_GetNotFound(t *testing.T) {
	registry, _ := newTestRegistry(t)

	_, err := registry.Get("nope")
	assert.ErrorIs(t, err, ErrAssetNotFound)
}

func TestRegistry_ListFilters(t *testing.T) {
	registry, db := newTestRegistry(t)
	alice := createTestUser(t, db, "wallet-alice")
	bob := createTestUser(t, db, "wallet-bob")

	mustCreate := func(owner string, at models.AssetType) *models.Asset {
		asset, err := registry.Create(owner, CreateInput{
			AssetType:    at,
			Weight:       decimal.NewFromInt(1),
			Purity:       decimal.NewFromFloat(0.9),
			CurrentPrice: decimal.NewFromInt(100),
		})
		require.NoError(t, err)
		return asset
	}

	mustCreate(alice.ID, models.AssetTypeGold)
	mustCreate(alice.ID, models.AssetTypeSilver)
	retired := mustCreate(bob.ID, models.AssetTypeGold)
	require.NoError(t, registry.Deactivate(retired.ID, bob.ID))

	gold := models.AssetTypeGold
	byType, err := registry.List(ListFilter{AssetType: &gold, Limit: 100})
	require.NoError(t, err)
	assert.Len(t, byType, 2)

	byOwner, err := registry.List(ListFilter{OwnerID: alice.ID, Limit: 100})
	require.NoError(t, err)
	assert.Len(t, byOwner, 2)

	active := true
	activeOnly, err := registry.List(ListFilter{IsActive: &active, Limit: 100})
	require.NoError(t, err)
	assert.Len(t, activeOnly, 2)

	page, err := registry.List(ListFilter{Offset: 2, Limit: 100})
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestRegistry_UpdatePartial(t *testing.T) {
	registry, db := newTestRegistry(t)
	owner := createTestUser(t, db, "wallet-owner")

	asset, err := registry.Create(owner.ID, CreateInput{
		AssetType:    models.AssetTypeDiamond,
		Weight:       decimal.NewFromInt(2),
		Purity:       decimal.NewFromFloat(0.95),
		CurrentPrice: decimal.NewFromInt(5000),
	})
	require.NoError(t, err)
	assert.Nil(t, asset.LastPriceUpdate)

	newPrice := decimal.NewFromInt(5500)
	updated, err := registry.Update(asset.ID, owner.ID, UpdateInput{CurrentPrice: &newPrice})
	require.NoError(t, err)
	assert.True(t, updated.CurrentPrice.Equal(newPrice))
	assert.True(t, updated.Weight.Equal(decimal.NewFromInt(2)), "untouched fields keep their values")
	require.NotNil(t, updated.LastPriceUpdate)

	// Updates that don't touch the price still move the timestamp
	cert := "GIA-987"
	first := *updated.LastPriceUpdate
	restamped, err := registry.Update(asset.ID, owner.ID, UpdateInput{Certification: &cert})
	require.NoError(t, err)
	require.NotNil(t, restamped.LastPriceUpdate)
	assert.False(t, restamped.LastPriceUpdate.Before(first))
}

func TestRegistry_UpdateOwnership(t *testing.T) {
	registry, db := newTestRegistry(t)
	owner := createTestUser(t, db, "wallet-owner")
	stranger := createTestUser(t, db, "wallet-stranger")

	asset, err := registry.Create(owner.ID, CreateInput{
		AssetType:    models.AssetTypeRuby,
		Weight:       decimal.NewFromInt(1),
		Purity:       decimal.NewFromFloat(0.9),
		CurrentPrice: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)

	w := decimal.NewFromInt(3)
	_, err = registry.Update(asset.ID, stranger.ID, UpdateInput{Weight: &w})
	assert.ErrorIs(t, err, ErrNotOwner)

	// Absence wins over ownership
	_, err = registry.Update("missing", stranger.ID, UpdateInput{Weight: &w})
	assert.ErrorIs(t, err, ErrAssetNotFound)
}

func TestRegistry_Deactivate(t *testing.T) {
	registry, db := newTestRegistry(t)
	owner := createTestUser(t, db, "wallet-owner")
	stranger := createTestUser(t, db, "wallet-stranger")

	asset, err := registry.Create(owner.ID, CreateInput{
		AssetType:    models.AssetTypePlatinum,
		Weight:       decimal.NewFromInt(5),
		Purity:       decimal.NewFromFloat(0.95),
		CurrentPrice: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)

	assert.ErrorIs(t, registry.Deactivate(asset.ID, stranger.ID), ErrNotOwner)
	assert.ErrorIs(t, registry.Deactivate("missing", owner.ID), ErrAssetNotFound)

	require.NoError(t, registry.Deactivate(asset.ID, owner.ID))

	// Soft delete: the record survives, flagged inactive
	got, err := registry.Get(asset.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestRegistry_Summary(t *testing.T) {
	registry, db := newTestRegistry(t)
	owner := createTestUser(t, db, "wallet-owner")

	a1, err := registry.Create(owner.ID, CreateInput{
		AssetType:    models.AssetTypeGold,
		Weight:       decimal.NewFromInt(10),
		Purity:       decimal.NewFromFloat(0.999),
		CurrentPrice: decimal.NewFromInt(2000),
	})
	require.NoError(t, err)

	_, err = registry.Create(owner.ID, CreateInput{
		AssetType:    models.AssetTypeSilver,
		Weight:       decimal.NewFromInt(100),
		Purity:       decimal.NewFromFloat(0.925),
		CurrentPrice: decimal.NewFromInt(25),
	})
	require.NoError(t, err)

	summary, err := registry.Summary()
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.TotalAssets)
	// 10*2000 + 100*25
	assert.True(t, summary.TotalValue.Equal(decimal.NewFromInt(22500)),
		"got %s", summary.TotalValue)
	assert.Nil(t, summary.ActiveOrders)
	assert.Nil(t, summary.PriceUpdates)

	// Deactivated assets drop out of the aggregates
	require.NoError(t, registry.Deactivate(a1.ID, owner.ID))
	summary, err = registry.Summary()
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.TotalAssets)
	assert.True(t, summary.TotalValue.Equal(decimal.NewFromInt(2500)))
}

func TestRegistry_SummaryCached(t *testing.T) {
	db := newTestDB(t)
	registry := NewRegistry(db, newTestCache(t), time.Minute)
	owner := createTestUser(t, db, "wallet-owner")

	asset, err := registry.Create(owner.ID, CreateInput{
		AssetType:    models.AssetTypeGold,
		Weight:       decimal.NewFromInt(10),
		Purity:       decimal.NewFromFloat(0.999),
		CurrentPrice: decimal.NewFromInt(2000),
	})
	require.NoError(t, err)

	summary, err := registry.Summary()
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.TotalAssets)

	// A write that bypasses the registry goes unnoticed within the TTL
	require.NoError(t, db.Model(&models.Asset{}).Where("id = ?", asset.ID).
		Update("current_price", decimal.NewFromInt(9999)).Error)

	cached, err := registry.Summary()
	require.NoError(t, err)
	assert.True(t, cached.TotalValue.Equal(summary.TotalValue), "served from cache")

	// Registry mutations invalidate the aggregate eagerly
	newPrice := decimal.NewFromInt(3000)
	_, err = registry.Update(asset.ID, owner.ID, UpdateInput{CurrentPrice: &newPrice})
	require.NoError(t, err)

	fresh, err := registry.Summary()
	require.NoError(t, err)
	assert.True(t, fresh.TotalValue.Equal(decimal.NewFromInt(30000)), "got %s", fresh.TotalValue)

	require.NoError(t, registry.Deactivate(asset.ID, owner.ID))
	empty, err := registry.Summary()
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty.TotalAssets)
}
