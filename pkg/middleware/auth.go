package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"vwa-api/pkg/auth"
	"vwa-api/pkg/models"
)

// AuthMiddleware resolves bearer credentials to users via the configured
// verification strategy.
type AuthMiddleware struct {
	verifier auth.Verifier
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(verifier auth.Verifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// RequireAuth aborts the request unless a bearer credential resolves to an
// active user.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		credential, ok := bearerCredential(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		user, err := am.verifier.Resolve(credential)
		if err != nil {
			am.abortWithResolveError(c, err)
			return
		}

		c.Set("user", user)
		c.Next()
	}
}

// OptionalAuth resolves a credential when one is present but lets anonymous
// requests through.
func (am *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if credential, ok := bearerCredential(c); ok {
			if user, err := am.verifier.Resolve(credential); err == nil {
				c.Set("user", user)
			}
		}
		c.Next()
	}
}

func (am *AuthMiddleware) abortWithResolveError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredential):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication credentials"})
	case errors.Is(err, auth.ErrUserDisabled):
		c.JSON(http.StatusForbidden, gin.H{"error": "User account is disabled"})
	default:
		// Persistence failures are not credential problems.
		logrus.Errorf("identity resolution failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve identity"})
	}
	c.Abort()
}

func bearerCredential(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		return "", false
	}

	return tokenParts[1], true
}

// GetUserFromContext gets the authenticated user from the gin context
func GetUserFromContext(c *gin.Context) (*models.User, bool) {
	user, exists := c.Get("user")
	if !exists {
		return nil, false
	}

	userModel, ok := user.(*models.User)
	return userModel, ok
}
