package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"vwa-api/pkg/models"
	"vwa-api/pkg/pricing"
)

// PricingHandlers contains price snapshot handlers
type PricingHandlers struct {
	service *pricing.Service
}

// NewPricingHandlers creates new pricing handlers
func NewPricingHandlers(service *pricing.Service) *PricingHandlers {
	return &PricingHandlers{service: service}
}

// CreatePriceHistoryRequest represents a manual price point submission
type CreatePriceHistoryRequest struct {
	AssetID string          `json:"asset_id" binding:"required"`
	Price   decimal.Decimal `json:"price"`
	Source  *string         `json:"source"`
}

// GetMarketPrices returns mock quotes for every asset type
func (ph *PricingHandlers) GetMarketPrices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    ph.service.MarketPrices(),
	})
}

// GetAssetPrice returns the mock quote for one asset type
func (ph *PricingHandlers) GetAssetPrice(c *gin.Context) {
	assetType := models.AssetType(c.Param("type"))

	quote, err := ph.service.AssetPrice(assetType)
	if err != nil {
		ph.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    quote,
	})
}

// CreatePriceHistory records a price point and updates the asset's price
func (ph *PricingHandlers) CreatePriceHistory(c *gin.Context) {
	var req CreatePriceHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	validator := NewValidator()
	validator.ValidatePrice("price", req.Price)
	if validator.HasErrors() {
		SendValidationErrors(c, validator.GetErrors())
		return
	}

	entry, err := ph.service.RecordHistory(req.AssetID, req.Price, req.Source)
	if err != nil {
		ph.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    entry,
	})
}

// GetPriceHistory returns windowed price history for an asset
func (ph *PricingHandlers) GetPriceHistory(c *gin.Context) {
	validator := NewValidator()
	offset, limit := pagination(c, validator)

	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil {
		validator.AddError("days", "must be an integer")
	}

	if validator.HasErrors() {
		SendValidationErrors(c, validator.GetErrors())
		return
	}

	entries, err := ph.service.History(c.Param("asset_id"), days, offset, limit)
	if err != nil {
		ph.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    entries,
	})
}

// UpdateAllPrices reprices every active asset from the mock oracle
func (ph *PricingHandlers) UpdateAllPrices(c *gin.Context) {
	count, err := ph.service.UpdateAllPrices()
	if err != nil {
		logrus.Errorf("bulk price update failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update prices"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "Prices updated",
		"updated_count": count,
		"timestamp":     time.Now().UTC(),
	})
}

// GetPriceTrends returns trend and volatility statistics
func (ph *PricingHandlers) GetPriceTrends(c *gin.Context) {
	validator := NewValidator()

	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil {
		validator.AddError("days", "must be an integer")
	}

	var assetType *models.AssetType
	if typeStr := c.Query("asset_type"); typeStr != "" {
		t := models.AssetType(typeStr)
		validator.ValidateAssetType("asset_type", t)
		assetType = &t
	}

	if validator.HasErrors() {
		SendValidationErrors(c, validator.GetErrors())
		return
	}

	report, err := ph.service.Trends(assetType, days)
	if err != nil {
		logrus.Errorf("trend computation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute trends"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    report,
	})
}

func (ph *PricingHandlers) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pricing.ErrAssetNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Asset not found"})
	case errors.Is(err, pricing.ErrUnknownAssetType):
		c.JSON(http.StatusNotFound, gin.H{"error": "Asset type not found"})
	default:
		logrus.Errorf("pricing operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
