package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devstore/backend/internal/infrastructure/auth"
	"github.com/devstore/backend/internal/infrastructure/config"
)

func newTestJWTService(t *testing.T, expiration time.Duration) *auth.JWTService {
	t.Helper()
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-for-unit-tests-32chars",
		AccessTokenExpiration: expiration,
		Issuer:                "devstore-backend",
	})
}

func newProtectedRouter(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw)
	r.GET("/api/v1/sales", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":  GetJWTUserID(c),
			"username": GetJWTUsername(c),
		})
	})
	r.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	svc := newTestJWTService(t, 15*time.Minute)
	userID := uuid.New()
	token, _, err := svc.GenerateToken(userID, "cashier1")
	require.NoError(t, err)

	r := newProtectedRouter(JWTAuthMiddleware(svc))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, userID.String(), body["user_id"])
	assert.Equal(t, "cashier1", body["username"])
}

func TestJWTAuthMiddleware_MissingHeader(t *testing.T) {
	svc := newTestJWTService(t, 15*time.Minute)
	r := newProtectedRouter(JWTAuthMiddleware(svc))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
}

func TestJWTAuthMiddleware_MalformedHeader(t *testing.T) {
	svc := newTestJWTService(t, 15*time.Minute)
	r := newProtectedRouter(JWTAuthMiddleware(svc))

	for _, header := range []string{"Basic abc123", "Bearer", "Bearer "} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
		req.Header.Set(AuthHeaderKey, header)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestJWTAuthMiddleware_ExpiredToken(t *testing.T) {
	expiredSvc := newTestJWTService(t, -time.Minute)
	token, _, err := expiredSvc.GenerateToken(uuid.New(), "cashier1")
	require.NoError(t, err)

	svc := newTestJWTService(t, 15*time.Minute)
	r := newProtectedRouter(JWTAuthMiddleware(svc))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
}

func TestJWTAuthMiddleware_SkipPaths(t *testing.T) {
	svc := newTestJWTService(t, 15*time.Minute)
	r := newProtectedRouter(JWTAuthMiddleware(svc))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuthMiddleware_SkipPathPrefixes(t *testing.T) {
	svc := newTestJWTService(t, 15*time.Minute)
	cfg := DefaultJWTConfig(svc)
	cfg.SkipPathPrefixes = []string{"/api/v1/sales"}
	r := newProtectedRouter(JWTAuthMiddlewareWithConfig(cfg))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOptionalJWTAuthMiddleware(t *testing.T) {
	svc := newTestJWTService(t, 15*time.Minute)
	r := newProtectedRouter(OptionalJWTAuthMiddleware(svc))

	t.Run("no token passes through", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Empty(t, body["user_id"])
	})

	t.Run("invalid token passes through", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+"not-a-token")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("valid token populates claims", func(t *testing.T) {
		userID := uuid.New()
		token, _, err := svc.GenerateToken(userID, "manager1")
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, userID.String(), body["user_id"])
	})
}

func TestGetJWTClaims(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Nil(t, GetJWTClaims(c))

	claims := &auth.Claims{UserID: uuid.New().String(), Username: "cashier1"}
	c.Set(JWTClaimsKey, claims)
	assert.Equal(t, claims, GetJWTClaims(c))
}
