package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vwa-api/pkg/auth"
	"vwa-api/pkg/models"
)

// fakeVerifier resolves a single known credential.
type fakeVerifier struct {
	known string
	user  *models.User
	err   error
}

func (f *fakeVerifier) Resolve(credential string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if credential == f.known {
		return f.user, nil
	}
	return nil, auth.ErrInvalidCredential
}

func newAuthRouter(verifier auth.Verifier, required bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	am := NewAuthMiddleware(verifier)

	mw := am.OptionalAuth()
	if required {
		mw = am.RequireAuth()
	}

	router := gin.New()
	router.GET("/whoami", mw, func(c *gin.Context) {
		user, ok := GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"anonymous": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": user.ID})
	})
	return router
}

func doGet(router *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	verifier := &fakeVerifier{known: "good", user: &models.User{ID: "u1"}}
	router := newAuthRouter(verifier, true)

	w := doGet(router, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doGet(router, "good")
	assert.Equal(t, http.StatusUnauthorized, w.Code, "credential without Bearer prefix is rejected")

	w = doGet(router, "Bearer bad")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doGet(router, "Bearer good")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "u1")
}

func TestRequireAuth_DisabledUser(t *testing.T) {
	verifier := &fakeVerifier{err: auth.ErrUserDisabled}
	router := newAuthRouter(verifier, true)

	w := doGet(router, "Bearer whatever")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAuth_InfrastructureFailure(t *testing.T) {
	verifier := &fakeVerifier{err: errors.New("connection refused")}
	router := newAuthRouter(verifier, true)

	w := doGet(router, "Bearer whatever")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestOptionalAuth(t *testing.T) {
	verifier := &fakeVerifier{known: "good", user: &models.User{ID: "u1"}}
	router := newAuthRouter(verifier, false)

	// Anonymous requests pass through
	w := doGet(router, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "anonymous")

	// Bad credentials degrade to anonymous rather than failing
	w = doGet(router, "Bearer bad")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "anonymous")

	w = doGet(router, "Bearer good")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "u1")
}

func TestIPRateLimit_NoCachePassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimitMiddleware(nil)

	router := gin.New()
	router.GET("/whoami", rl.IPRateLimit(RateLimitConfig{Requests: 1, Window: 0}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, fmt.Sprintf("request %d", i))
	}
}
