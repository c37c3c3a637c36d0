package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"vwa-api/pkg/assets"
	"vwa-api/pkg/auth"
	"vwa-api/pkg/cache"
	"vwa-api/pkg/config"
	"vwa-api/pkg/database"
	"vwa-api/pkg/middleware"
	"vwa-api/pkg/pricing"
	"vwa-api/pkg/trading"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *gorm.DB, redisCache *cache.Cache, cfg *config.Config) error {
	// Identity resolution strategy is chosen once per process
	verifier, err := auth.NewVerifier(cfg, db)
	if err != nil {
		return err
	}

	authMiddleware := middleware.NewAuthMiddleware(verifier)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(redisCache)

	userHandlers := NewUserHandlers(db)
	assetHandlers := NewAssetHandlers(assets.NewRegistry(db, redisCache, cfg.Pricing.SummaryCacheTTL))
	tradeHandlers := NewTradeHandlers(trading.NewManager(db))
	pricingHandlers := NewPricingHandlers(pricing.NewService(db, redisCache, cfg.Pricing.QuoteCacheTTL))

	// Liveness banner
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "VWA API - Precious Asset Tokenization",
			"version": "1.0.0",
		})
	})

	// Health probe
	router.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
		if redisCache != nil {
			if err := redisCache.HealthCheck(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status": "unhealthy",
					"error":  err.Error(),
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "vwa-api",
		})
	})

	// Apply global rate limiting to all API routes
	api := router.Group("/api")
	api.Use(rateLimitMiddleware.IPRateLimit(middleware.DefaultRateLimit))

	users := api.Group("/users")
	{
		users.POST("", userHandlers.Register)
		users.GET("/me", authMiddleware.RequireAuth(), userHandlers.GetMe)
		users.GET("/:id", userHandlers.GetUser)
		users.GET("", userHandlers.ListUsers)
	}

	assetRoutes := api.Group("/assets")
	{
		assetRoutes.POST("", authMiddleware.RequireAuth(), assetHandlers.CreateAsset)
		assetRoutes.GET("", authMiddleware.OptionalAuth(), assetHandlers.ListAssets)
		assetRoutes.GET("/market/summary", assetHandlers.GetMarketSummary)
		assetRoutes.GET("/:id", assetHandlers.GetAsset)
		assetRoutes.PUT("/:id", authMiddleware.RequireAuth(), assetHandlers.UpdateAsset)
		assetRoutes.DELETE("/:id", authMiddleware.RequireAuth(), assetHandlers.DeleteAsset)
	}

	pricingRoutes := api.Group("/pricing")
	{
		pricingRoutes.GET("/market", pricingHandlers.GetMarketPrices)
		pricingRoutes.GET("/market/:type", pricingHandlers.GetAssetPrice)
		pricingRoutes.POST("/history", authMiddleware.RequireAuth(), pricingHandlers.CreatePriceHistory)
		pricingRoutes.GET("/history/:asset_id", pricingHandlers.GetPriceHistory)
		pricingRoutes.POST("/update-prices", pricingHandlers.UpdateAllPrices)
		pricingRoutes.GET("/trends", pricingHandlers.GetPriceTrends)
	}

	trades := api.Group("/trades")
	{
		trades.POST("/orders", authMiddleware.RequireAuth(), tradeHandlers.CreateOrder)
		trades.GET("/orders", authMiddleware.OptionalAuth(), tradeHandlers.ListOrders)
		trades.GET("/orders/:id", tradeHandlers.GetOrder)
		trades.PUT("/orders/:id", authMiddleware.RequireAuth(), tradeHandlers.UpdateOrder)
		trades.DELETE("/orders/:id", authMiddleware.RequireAuth(), tradeHandlers.CancelOrder)
		trades.POST("/orders/:id/execute", authMiddleware.RequireAuth(), tradeHandlers.ExecuteOrder)
	}

	return nil
}
