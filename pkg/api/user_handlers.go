package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"vwa-api/pkg/middleware"
	"vwa-api/pkg/models"
)

// UserHandlers contains user-related handlers
type UserHandlers struct {
	db *gorm.DB
}

// NewUserHandlers creates new user handlers
func NewUserHandlers(db *gorm.DB) *UserHandlers {
	return &UserHandlers{db: db}
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	WalletAddress string  `json:"wallet_address" binding:"required"`
	Username      *string `json:"username"`
	Email         *string `json:"email"`
}

// Register handles explicit user registration
func (uh *UserHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	validator := NewValidator()
	validator.ValidateWalletAddress("wallet_address", req.WalletAddress)
	if validator.HasErrors() {
		SendValidationErrors(c, validator.GetErrors())
		return
	}

	var existing models.User
	if err := uh.db.Where("wallet_address = ?", req.WalletAddress).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User with this wallet address already exists"})
		return
	}

	user := models.User{
		WalletAddress: req.WalletAddress,
		Username:      req.Username,
		Email:         req.Email,
		IsActive:      true,
	}

	if err := uh.db.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    user,
	})
}

// GetMe returns the authenticated user
func (uh *UserHandlers) GetMe(c *gin.Context) {
	user, exists := middleware.GetUserFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// GetUser returns a specific user by ID
func (uh *UserHandlers) GetUser(c *gin.Context) {
	userID := c.Param("id")

	var user models.User
	if err := uh.db.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// ListUsers returns a paginated user listing
func (uh *UserHandlers) ListUsers(c *gin.Context) {
	validator := NewValidator()
	offset, limit := pagination(c, validator)
	if validator.HasErrors() {
		SendValidationErrors(c, validator.GetErrors())
		return
	}

	var users []models.User
	if err := uh.db.Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    users,
	})
}
