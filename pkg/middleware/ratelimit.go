package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"vwa-api/pkg/cache"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Requests int           // number of requests allowed per window
	Window   time.Duration // time window
}

// DefaultRateLimit applies to every route.
var DefaultRateLimit = RateLimitConfig{
	Requests: 100,
	Window:   time.Minute,
}

// RateLimitMiddleware enforces per-IP request budgets backed by Redis. When no
// cache is configured the middleware is a pass-through.
type RateLimitMiddleware struct {
	cache *cache.Cache
}

// NewRateLimitMiddleware creates a new rate limiting middleware
func NewRateLimitMiddleware(c *cache.Cache) *RateLimitMiddleware {
	return &RateLimitMiddleware{cache: c}
}

// IPRateLimit creates a rate limiting middleware keyed by client IP
func (rl *RateLimitMiddleware) IPRateLimit(config RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.cache == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf(cache.KeyRateLimit, c.ClientIP())
		count, err := rl.cache.Increment(key)
		if err != nil {
			// Rate limiting degrades open when Redis is unavailable.
			c.Next()
			return
		}
		if count == 1 {
			_ = rl.cache.Expire(key, config.Window)
		}

		remaining := int64(config.Requests) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Requests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(config.Requests) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, please try again later"})
			c.Abort()
			return
		}

		c.Next()
	}
}
