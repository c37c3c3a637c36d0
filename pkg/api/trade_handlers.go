package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"vwa-api/pkg/middleware"
	"vwa-api/pkg/models"
	"vwa-api/pkg/trading"
)

// TradeHandlers contains order lifecycle handlers
type TradeHandlers struct {
	manager *trading.Manager
}

// NewTradeHandlers creates new trade handlers
func NewTradeHandlers(manager *trading.Manager) *TradeHandlers {
	return &TradeHandlers{manager: manager}
}

// CreateOrderRequest represents an order creation request
type CreateOrderRequest struct {
	AssetID      string           `json:"asset_id" binding:"required"`
	OrderType    models.OrderType `json:"order_type" binding:"required"`
	Quantity     decimal.Decimal  `json:"quantity"`
	PricePerUnit decimal.Decimal  `json:"price_per_unit"`
	ExpiresAt    *time.Time       `json:"expires_at"`
}

// UpdateOrderRequest represents a partial order update. Status is not
// accepted here; cancellation and execution have dedicated endpoints.
type UpdateOrderRequest struct {
	Quantity     *decimal.Decimal `json:"quantity"`
	PricePerUnit *decimal.Decimal `json:"price_per_unit"`
}

// CreateOrder creates a new pending trade order
func (th *TradeHandlers) CreateOrder(c *gin.Context) {
	user, exists := middleware.GetUserFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	validator := NewValidator()
	validator.ValidateOrderType("order_type", req.OrderType)
	validator.ValidateQuantity("quantity", req.Quantity)
	validator.ValidatePrice("price_per_unit", req.PricePerUnit)
	if validator.HasErrors() {
		SendValidationErrors(c, validator.GetErrors())
		return
	}

	order, err := th.manager.Create(user.ID, trading.CreateInput{
		AssetID:      req.AssetID,
		OrderType:    req.OrderType,
		Quantity:     req.Quantity,
		PricePerUnit: req.PricePerUnit,
		ExpiresAt:    req.ExpiresAt,
	})
	if err != nil {
		th.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// ListOrders returns filtered, paginated orders. An authenticated caller may
// pass owner_id=me to scope the listing to their own orders.
func (th *TradeHandlers) ListOrders(c *gin.Context) {
	validator := NewValidator()
	offset, limit := pagination(c, validator)

	ownerID, ok := resolveOwnerParam(c)
	if !ok {
		return
	}

	filter := trading.ListFilter{
		AssetID: c.Query("asset_id"),
		OwnerID: ownerID,
		Offset:  offset,
		Limit:   limit,
	}

	if typeStr := c.Query("order_type"); typeStr != "" {
		orderType := models.OrderType(typeStr)
		validator.ValidateOrderType("order_type", orderType)
		filter.OrderType = &orderType
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := models.OrderStatus(statusStr)
		if !status.IsValid() {
			validator.AddError("status", "invalid order status")
		}
		filter.Status = &status
	}

	if validator.HasErrors() {
		SendValidationErrors(c, validator.GetErrors())
		return
	}

	orders, err := th.manager.List(filter)
	if err != nil {
		logrus.Errorf("failed to list orders: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// GetOrder returns a specific trade order
func (th *TradeHandlers) GetOrder(c *gin.Context) {
	order, err := th.manager.Get(c.Param("id"))
	if err != nil {
		th.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// UpdateOrder applies a partial update to a pending order
func (th *TradeHandlers) UpdateOrder(c *gin.Context) {
	user, exists := middleware.GetUserFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	validator := NewValidator()
	if req.Quantity != nil {
		validator.ValidateQuantity("quantity", *req.Quantity)
	}
	if req.PricePerUnit != nil {
		validator.ValidatePrice("price_per_unit", *req.PricePerUnit)
	}
	if validator.HasErrors() {
		SendValidationErrors(c, validator.GetErrors())
		return
	}

	order, err := th.manager.Update(c.Param("id"), user.ID, trading.UpdateInput{
		Quantity:     req.Quantity,
		PricePerUnit: req.PricePerUnit,
	})
	if err != nil {
		th.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// CancelOrder cancels a pending order on behalf of the owner
func (th *TradeHandlers) CancelOrder(c *gin.Context) {
	user, exists := middleware.GetUserFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	order, err := th.manager.Cancel(c.Param("id"), user.ID)
	if err != nil {
		th.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Trade order cancelled successfully",
		"data":    order,
	})
}

// ExecuteOrder fills a pending order on behalf of a counterparty
func (th *TradeHandlers) ExecuteOrder(c *gin.Context) {
	user, exists := middleware.GetUserFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	order, err := th.manager.Execute(c.Param("id"), user.ID)
	if err != nil {
		th.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Trade executed successfully",
		"data":    order,
	})
}

func (th *TradeHandlers) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, trading.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Trade order not found"})
	case errors.Is(err, trading.ErrAssetNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Asset not found"})
	case errors.Is(err, trading.ErrAssetInactive):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Asset is not active"})
	case errors.Is(err, trading.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to modify this order"})
	case errors.Is(err, trading.ErrNotPending):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order is not pending"})
	case errors.Is(err, trading.ErrOwnOrder):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot execute your own order"})
	default:
		logrus.Errorf("order operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
