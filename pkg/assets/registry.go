// Package assets owns asset records and enforces owner-only mutation.
package assets

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"vwa-api/pkg/cache"
	"vwa-api/pkg/models"
)

var (
	// ErrAssetNotFound maps to 404.
	ErrAssetNotFound = errors.New("asset not found")
	// ErrNotOwner maps to 403. Absence is always checked before ownership.
	ErrNotOwner = errors.New("caller does not own this asset")
)

// Registry performs asset CRUD against an explicitly supplied database handle.
// The cache is optional; nil means the market summary is computed per call.
type Registry struct {
	db         *gorm.DB
	cache      *cache.Cache
	summaryTTL time.Duration
}

// NewRegistry creates an asset registry.
func NewRegistry(db *gorm.DB, c *cache.Cache, summaryTTL time.Duration) *Registry {
	return &Registry{db: db, cache: c, summaryTTL: summaryTTL}
}

// CreateInput holds the validated fields for a new asset.
type CreateInput struct {
	AssetType     models.AssetType
	Weight        decimal.Decimal
	Purity        decimal.Decimal
	Certification *string
	CurrentPrice  decimal.Decimal
}

// Create persists a new active asset owned by ownerID.
func (r *Registry) Create(ownerID string, in CreateInput) (*models.Asset, error) {
	asset := models.Asset{
		OwnerID:       ownerID,
		AssetType:     in.AssetType,
		Weight:        in.Weight,
		Purity:        in.Purity,
		Certification: in.Certification,
		CurrentPrice:  in.CurrentPrice,
		IsActive:      true,
	}

	if err := r.db.Create(&asset).Error; err != nil {
		return nil, fmt.Errorf("failed to create asset: %w", err)
	}

	r.invalidateSummary()
	return &asset, nil
}

// ListFilter narrows and paginates asset listings.
type ListFilter struct {
	AssetType *models.AssetType
	OwnerID   string
	IsActive  *bool
	Offset    int
	Limit     int
}

// List returns matching assets in persistence-default order.
func (r *Registry) List(f ListFilter) ([]models.Asset, error) {
	query := r.db.Model(&models.Asset{})

	if f.AssetType != nil {
		query = query.Where("asset_type = ?", *f.AssetType)
	}
	if f.OwnerID != "" {
		query = query.Where("owner_id = ?", f.OwnerID)
	}
	if f.IsActive != nil {
		query = query.Where("is_active = ?", *f.IsActive)
	}

	var assets []models.Asset
	if err := query.Offset(f.Offset).Limit(f.Limit).Find(&assets).Error; err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	return assets, nil
}

// Get returns the asset or ErrAssetNotFound.
func (r *Registry) Get(id string) (*models.Asset, error) {
	var asset models.Asset
	if err := r.db.Where("id = ?", id).First(&asset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, fmt.Errorf("failed to fetch asset: %w", err)
	}
	return &asset, nil
}

// UpdateInput holds partial-update fields; nil fields are left untouched.
type UpdateInput struct {
	Weight        *decimal.Decimal
	Purity        *decimal.Decimal
	Certification *string
	CurrentPrice  *decimal.Decimal
}

// Update applies a partial update on behalf of callerID. LastPriceUpdate is
// stamped on every update, whether or not the price changed; downstream
// consumers treat it as "last modified".
func (r *Registry) Update(id, callerID string, in UpdateInput) (*models.Asset, error) {
	var asset models.Asset

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&asset).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAssetNotFound
			}
			return fmt.Errorf("failed to fetch asset: %w", err)
		}

		if asset.OwnerID != callerID {
			return ErrNotOwner
		}

		updates := map[string]interface{}{
			"last_price_update": time.Now().UTC(),
		}
		if in.Weight != nil {
			updates["weight"] = *in.Weight
		}
		if in.Purity != nil {
			updates["purity"] = *in.Purity
		}
		if in.Certification != nil {
			updates["certification"] = *in.Certification
		}
		if in.CurrentPrice != nil {
			updates["current_price"] = *in.CurrentPrice
		}

		if err := tx.Model(&asset).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update asset: %w", err)
		}

		return tx.Where("id = ?", id).First(&asset).Error
	})
	if err != nil {
		return nil, err
	}

	r.invalidateSummary()
	return &asset, nil
}

// Deactivate soft-deletes the asset on behalf of callerID. History rows and
// orders referencing the asset remain.
func (r *Registry) Deactivate(id, callerID string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var asset models.Asset
		if err := tx.Where("id = ?", id).First(&asset).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAssetNotFound
			}
			return fmt.Errorf("failed to fetch asset: %w", err)
		}

		if asset.OwnerID != callerID {
			return ErrNotOwner
		}

		if err := tx.Model(&asset).Update("is_active", false).Error; err != nil {
			return fmt.Errorf("failed to deactivate asset: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	r.invalidateSummary()
	return nil
}

// MarketSummary aggregates active-asset statistics. ActiveOrders and
// PriceUpdates are not yet computed and are reported as explicit nulls rather
// than zeroes that look like real aggregates.
type MarketSummary struct {
	TotalAssets  int64           `json:"total_assets"`
	TotalValue   decimal.Decimal `json:"total_value"`
	ActiveOrders *int64          `json:"active_orders"` // not yet computed
	PriceUpdates *int64          `json:"price_updates"` // not yet computed
	LastUpdated  time.Time       `json:"last_updated"`
}

// Summary returns the market summary over active assets. The aggregate is
// cached with a short TTL; asset mutations invalidate it eagerly.
func (r *Registry) Summary() (*MarketSummary, error) {
	if r.cache != nil {
		var cached MarketSummary
		if err := r.cache.GetMarketSummary(&cached); err == nil {
			return &cached, nil
		}
	}

	var totalAssets int64
	if err := r.db.Model(&models.Asset{}).Where("is_active = ?", true).Count(&totalAssets).Error; err != nil {
		return nil, fmt.Errorf("failed to count assets: %w", err)
	}

	var totalValue decimal.Decimal
	err := r.db.Model(&models.Asset{}).
		Where("is_active = ?", true).
		Select("COALESCE(SUM(current_price * weight), 0)").
		Scan(&totalValue).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum asset value: %w", err)
	}

	summary := &MarketSummary{
		TotalAssets: totalAssets,
		TotalValue:  totalValue,
		LastUpdated: time.Now().UTC(),
	}

	if r.cache != nil {
		if err := r.cache.CacheMarketSummary(summary, r.summaryTTL); err != nil {
			logrus.Warnf("failed to cache market summary: %v", err)
		}
	}

	return summary, nil
}

func (r *Registry) invalidateSummary() {
	if r.cache == nil {
		return
	}
	if err := r.cache.InvalidateMarketSummary(); err != nil {
		logrus.Warnf("failed to invalidate market summary cache: %v", err)
	}
}
