package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"vwa-api/pkg/assets"
	"vwa-api/pkg/middleware"
	"vwa-api/pkg/models"
)

// AssetHandlers contains asset registry handlers
type AssetHandlers struct {
	registry *assets.Registry
}

// NewAssetHandlers creates new asset handlers
func NewAssetHandlers(registry *assets.Registry) *AssetHandlers {
	return &AssetHandlers{registry: registry}
}

// CreateAssetRequest represents an asset creation request
type CreateAssetRequest struct {
	AssetType     models.AssetType `json:"asset_type" binding:"required"`
	Weight        decimal.Decimal  `json:"weight"`
	Purity        decimal.Decimal  `json:"purity"`
	Certification *string          `json:"certification"`
	CurrentPrice  decimal.Decimal  `json:"current_price"`
}

// UpdateAssetRequest represents a partial asset update
type UpdateAssetRequest struct {
	Weight        *decimal.Decimal `json:"weight"`
	Purity        *decimal.Decimal `json:"purity"`
	Certification *string          `json:"certification"`
	CurrentPrice  *decimal.Decimal `json:"current_price"`
}

// CreateAsset creates a new asset owned by the caller
func (ah *AssetHandlers) CreateAsset(c *gin.Context) {
	user, exists := middleware.GetUserFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	validator := NewValidator()
	validator.ValidateAssetType("asset_type", req.AssetType)
	validator.ValidateWeight("weight", req.Weight)
	validator.ValidatePurity("purity", req.Purity)
	validator.ValidatePrice("current_price", req.CurrentPrice)
	if validator.HasErrors() {
		SendValidationErrors(c, validator.GetErrors())
		return
	}

	asset, err := ah.registry.Create(user.ID, assets.CreateInput{
		AssetType:     req.AssetType,
		Weight:        req.Weight,
		Purity:        req.Purity,
		Certification: req.Certification,
		CurrentPrice:  req.CurrentPrice,
	})
	if err != nil {
		logrus.Errorf("failed to create asset: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create asset"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    asset,
	})
}

// ListAssets returns filtered, paginated assets. An authenticated caller may
// pass owner_id=me to scope the listing to their own assets.
func (ah *AssetHandlers) ListAssets(c *gin.Context) {
	validator := NewValidator()
	offset, limit := pagination(c, validator)

	ownerID, ok := resolveOwnerParam(c)
	if !ok {
		return
	}

	filter := assets.ListFilter{
		OwnerID: ownerID,
		Offset:  offset,
		Limit:   limit,
	}

	if typeStr := c.Query("asset_type"); typeStr != "" {
		assetType := models.AssetType(typeStr)
		validator.ValidateAssetType("asset_type", assetType)
		filter.AssetType = &assetType
	}

	isActive, err := strconv.ParseBool(c.DefaultQuery("is_active", "true"))
	if err != nil {
		validator.AddError("is_active", "must be a boolean")
	}
	filter.IsActive = &isActive

	if validator.HasErrors() {
		SendValidationErrors(c, validator.GetErrors())
		return
	}

	result, err := ah.registry.List(filter)
	if err != nil {
		logrus.Errorf("failed to list assets: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch assets"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// GetAsset returns a specific asset
func (ah *AssetHandlers) GetAsset(c *gin.Context) {
	asset, err := ah.registry.Get(c.Param("id"))
	if err != nil {
		ah.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    asset,
	})
}

// UpdateAsset applies a partial update on behalf of the owner
func (ah *AssetHandlers) UpdateAsset(c *gin.Context) {
	user, exists := middleware.GetUserFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req UpdateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	validator := NewValidator()
	if req.Weight != nil {
		validator.ValidateWeight("weight", *req.Weight)
	}
	if req.Purity != nil {
		validator.ValidatePurity("purity", *req.Purity)
	}
	if req.CurrentPrice != nil {
		validator.ValidatePrice("current_price", *req.CurrentPrice)
	}
	if validator.HasErrors() {
		SendValidationErrors(c, validator.GetErrors())
		return
	}

	asset, err := ah.registry.Update(c.Param("id"), user.ID, assets.UpdateInput{
		Weight:        req.Weight,
		Purity:        req.Purity,
		Certification: req.Certification,
		CurrentPrice:  req.CurrentPrice,
	})
	if err != nil {
		ah.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    asset,
	})
}

// DeleteAsset soft-deletes an asset on behalf of the owner
func (ah *AssetHandlers) DeleteAsset(c *gin.Context) {
	user, exists := middleware.GetUserFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := ah.registry.Deactivate(c.Param("id"), user.ID); err != nil {
		ah.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Asset deactivated successfully",
	})
}

// GetMarketSummary returns aggregate statistics over active assets
func (ah *AssetHandlers) GetMarketSummary(c *gin.Context) {
	summary, err := ah.registry.Summary()
	if err != nil {
		logrus.Errorf("failed to compute market summary: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute market summary"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    summary,
	})
}

func (ah *AssetHandlers) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, assets.ErrAssetNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Asset not found"})
	case errors.Is(err, assets.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to modify this asset"})
	default:
		logrus.Errorf("asset operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
