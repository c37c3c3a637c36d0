package pricing

import (
	"errors"
	"fmt"
	"math"
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
	// ErrUnknownAssetType maps to 404.
	ErrUnknownAssetType = errors.New("asset type not found")
)

// Trend classification thresholds, in percent change.
const trendThreshold = 1.0

// Service serves mock quotes, records price history, and computes trend
// statistics. The cache is optional; nil means quotes are computed per call.
type Service struct {
	db       *gorm.DB
	cache    *cache.Cache
	quoteTTL time.Duration
}

// NewService creates a price snapshot service.
func NewService(db *gorm.DB, c *cache.Cache, quoteTTL time.Duration) *Service {
	return &Service{db: db, cache: c, quoteTTL: quoteTTL}
}

// MarketPrices returns the current mock quote for every asset type.
func (s *Service) MarketPrices() []Quote {
	if s.cache != nil {
		var cached []Quote
		if err := s.cache.GetMarketQuotes(&cached); err == nil {
			return cached
		}
	}

	quotes := QuotesAt(time.Now().UTC())

	if s.cache != nil {
		if err := s.cache.CacheMarketQuotes(quotes, s.quoteTTL); err != nil {
			logrus.Warnf("failed to cache market quotes: %v", err)
		}
	}

	return quotes
}

// AssetPrice returns the current mock quote for one asset type.
func (s *Service) AssetPrice(t models.AssetType) (*Quote, error) {
	if s.cache != nil {
		var cached Quote
		if err := s.cache.GetAssetQuote(string(t), &cached); err == nil {
			return &cached, nil
		}
	}

	quote, ok := QuoteAt(t, time.Now().UTC())
	if !ok {
		return nil, ErrUnknownAssetType
	}

	if s.cache != nil {
		if err := s.cache.CacheAssetQuote(string(t), quote, s.quoteTTL); err != nil {
			logrus.Warnf("failed to cache asset quote: %v", err)
		}
	}

	return &quote, nil
}

// RecordHistory appends a history row for the asset and overwrites the
// asset's current price. Both writes commit as one transaction.
func (s *Service) RecordHistory(assetID string, price decimal.Decimal, source *string) (*models.PriceHistory, error) {
	var entry models.PriceHistory

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var asset models.Asset
		if err := tx.Where("id = ?", assetID).First(&asset).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAssetNotFound
			}
			return fmt.Errorf("failed to fetch asset: %w", err)
		}

		entry = models.PriceHistory{
			AssetID: assetID,
			Price:   price,
			Source:  source,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to create price history: %w", err)
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{
			"current_price":     price,
			"last_price_update": now,
		}
		if err := tx.Model(&asset).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update asset price: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

// History returns the asset's price points within the last `days` days,
// newest first. Days is clamped to [1, 365].
func (s *Service) History(assetID string, days, offset, limit int) ([]models.PriceHistory, error) {
	var asset models.Asset
	if err := s.db.Where("id = ?", assetID).First(&asset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, fmt.Errorf("failed to fetch asset: %w", err)
	}

	days = clamp(days, 1, 365)
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	var entries []models.PriceHistory
	err := s.db.Where("asset_id = ? AND timestamp >= ? AND timestamp <= ?", assetID, start, end).
		Order("timestamp DESC").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch price history: %w", err)
	}

	return entries, nil
}

// UpdateAllPrices reprices every active asset from the oracle and appends one
// history row per asset. The whole pass commits as one transaction; a failure
// leaves no partial batch behind.
func (s *Service) UpdateAllPrices() (int, error) {
	now := time.Now().UTC()
	updated := 0

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var activeAssets []models.Asset
		if err := tx.Where("is_active = ?", true).Find(&activeAssets).Error; err != nil {
			return fmt.Errorf("failed to list active assets: %w", err)
		}

		source := "api_update"
		for i := range activeAssets {
			asset := &activeAssets[i]

			base, ok := basePrices[asset.AssetType]
			if !ok {
				continue
			}

			variation := variationAt(assetSeed(now, asset.ID))
			newPrice := base.Mul(decimal.NewFromFloat(1 + variation)).Round(2)

			updates := map[string]interface{}{
				"current_price":     newPrice,
				"last_price_update": now,
			}
			if err := tx.Model(asset).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update asset %s: %w", asset.ID, err)
			}

			entry := models.PriceHistory{
				AssetID: asset.ID,
				Price:   newPrice,
				Source:  &source,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return fmt.Errorf("failed to record history for asset %s: %w", asset.ID, err)
			}

			updated++
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateMarketSummary(); err != nil {
			logrus.Warnf("failed to invalidate market summary cache: %v", err)
		}
	}

	return updated, nil
}

// TrendReport summarizes price movement over a window.
type TrendReport struct {
	Trend         string  `json:"trend"` // up | down | stable
	ChangePercent float64 `json:"change_percent"`
	Volatility    float64 `json:"volatility"`
	DataPoints    int     `json:"data_points"`
	FirstPrice    float64 `json:"first_price,omitempty"`
	LastPrice     float64 `json:"last_price,omitempty"`
}

// Trends computes percent change and volatility over the last `days` days
// (clamped to [1, 30]), optionally restricted to one asset type. Change is
// first-to-last over the window in timestamp order; volatility is the
// population standard deviation over the mean, as a percentage.
func (s *Service) Trends(assetType *models.AssetType, days int) (*TrendReport, error) {
	days = clamp(days, 1, 30)
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	query := s.db.Model(&models.PriceHistory{}).
		Where("price_history.timestamp >= ? AND price_history.timestamp <= ?", start, end)

	if assetType != nil {
		query = query.
			Joins("JOIN assets ON assets.id = price_history.asset_id").
			Where("assets.asset_type = ?", *assetType)
	}

	var entries []models.PriceHistory
	if err := query.Order("price_history.timestamp ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch price history: %w", err)
	}

	if len(entries) == 0 {
		return &TrendReport{Trend: "stable"}, nil
	}

	prices := make([]float64, len(entries))
	for i, entry := range entries {
		prices[i], _ = entry.Price.Float64()
	}

	first := prices[0]
	last := prices[len(prices)-1]
	changePercent := (last - first) / first * 100

	mean := 0.0
	for _, p := range prices {
		mean += p
	}
	mean /= float64(len(prices))

	variance := 0.0
	for _, p := range prices {
		variance += (p - mean) * (p - mean)
	}
	variance /= float64(len(prices))
	volatility := math.Sqrt(variance) / mean * 100

	trend := "stable"
	if changePercent > trendThreshold {
		trend = "up"
	} else if changePercent < -trendThreshold {
		trend = "down"
	}

	return &TrendReport{
		Trend:         trend,
		ChangePercent: roundTo(changePercent, 2),
		Volatility:    roundTo(volatility, 2),
		DataPoints:    len(prices),
		FirstPrice:    first,
		LastPrice:     last,
	}, nil
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
