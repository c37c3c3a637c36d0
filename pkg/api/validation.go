package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"vwa-api/pkg/middleware"
	"vwa-api/pkg/models"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

// Validator provides validation methods
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{
		errors: make(ValidationErrors, 0),
	}
}

// AddError adds a validation error
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// GetErrors returns all validation errors
func (v *Validator) GetErrors() ValidationErrors {
	return v.errors
}

// ValidateWalletAddress validates a wallet address
func (v *Validator) ValidateWalletAddress(field, address string) {
	if address == "" {
		v.AddError(field, "wallet address is required")
		return
	}

	if len(address) > 128 {
		v.AddError(field, "wallet address is too long")
	}
}

// ValidateAssetType validates an asset type
func (v *Validator) ValidateAssetType(field string, assetType models.AssetType) {
	if assetType == "" {
		v.AddError(field, "asset type is required")
		return
	}

	if !assetType.IsValid() {
		v.AddError(field, fmt.Sprintf("invalid asset type %q", assetType))
	}
}

// ValidateWeight validates an asset weight in grams
func (v *Validator) ValidateWeight(field string, weight decimal.Decimal) {
	if weight.IsZero() || weight.IsNegative() {
		v.AddError(field, "weight must be positive")
	}
}

// ValidatePurity validates a purity percentage
func (v *Validator) ValidatePurity(field string, purity decimal.Decimal) {
	if purity.IsNegative() || purity.GreaterThan(decimal.NewFromInt(100)) {
		v.AddError(field, "purity must be between 0 and 100")
	}
}

// ValidatePrice validates a USD price
func (v *Validator) ValidatePrice(field string, price decimal.Decimal) {
	if price.IsZero() || price.IsNegative() {
		v.AddError(field, "price must be positive")
	}
}

// ValidateQuantity validates an order quantity
func (v *Validator) ValidateQuantity(field string, quantity decimal.Decimal) {
	if quantity.IsZero() || quantity.IsNegative() {
		v.AddError(field, "quantity must be positive")
	}
}

// ValidateOrderType validates an order type
func (v *Validator) ValidateOrderType(field string, orderType models.OrderType) {
	if orderType == "" {
		v.AddError(field, "order type is required")
		return
	}

	if !orderType.IsValid() {
		v.AddError(field, "invalid order type (valid types: buy, sell)")
	}
}

// ValidateLimit validates pagination limit
func (v *Validator) ValidateLimit(field string, limit int, maxLimit int) {
	if limit < 1 {
		v.AddError(field, "limit must be at least 1")
		return
	}

	if limit > maxLimit {
		v.AddError(field, fmt.Sprintf("limit cannot exceed %d", maxLimit))
	}
}

// ValidateOffset validates pagination offset
func (v *Validator) ValidateOffset(field string, offset int) {
	if offset < 0 {
		v.AddError(field, "offset cannot be negative")
	}
}

// SendValidationErrors sends validation errors as JSON response
func SendValidationErrors(c *gin.Context, errors ValidationErrors) {
	c.JSON(400, gin.H{
		"error":   "Validation failed",
		"details": errors,
	})
}

// maxPageSize bounds list pagination.
const maxPageSize = 1000

// pagination parses and validates skip/limit query parameters. Range checks
// only run on values that parsed, so a malformed input produces one error.
func pagination(c *gin.Context, v *Validator) (offset, limit int) {
	offset, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil {
		v.AddError("skip", "must be an integer")
	} else {
		v.ValidateOffset("skip", offset)
	}

	limit, err = strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil {
		v.AddError("limit", "must be an integer")
	} else {
		v.ValidateLimit("limit", limit, maxPageSize)
	}

	return offset, limit
}

// resolveOwnerParam reads the owner_id query parameter. The alias "me" scopes
// to the authenticated caller and requires a credential. A false return means
// the response has already been written.
func resolveOwnerParam(c *gin.Context) (string, bool) {
	ownerID := c.Query("owner_id")
	if ownerID != "me" {
		return ownerID, true
	}

	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required for owner_id=me"})
		return "", false
	}

	return user.ID, true
}
