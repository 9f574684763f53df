package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stocksync/backend/internal/infrastructure/config"
)

func newAuthRouter(cfg config.JWTConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TenantAuth(cfg, zap.NewNop()))
	r.GET("/protected", func(c *gin.Context) {
		tenantID, err := GetTenantUUID(c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"tenant_id": tenantID.String()})
	})
	return r
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:     "test-secret",
		Issuer:     "stocksync",
		Expiration: time.Hour,
	}
}

func TestTenantAuth_BearerToken(t *testing.T) {
	cfg := testJWTConfig()
	router := newAuthRouter(cfg)
	tenantID := uuid.New()

	token, err := IssueToken(cfg, tenantID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), tenantID.String())
}

func TestTenantAuth_HeaderFallback(t *testing.T) {
	router := newAuthRouter(testJWTConfig())
	tenantID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("X-Tenant-ID", tenantID.String())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), tenantID.String())
}

func TestTenantAuth_Rejections(t *testing.T) {
	cfg := testJWTConfig()

	tests := []struct {
		name  string
		setup func(req *http.Request)
	}{
		{
			name:  "no credentials at all",
			setup: func(req *http.Request) {},
		},
		{
			name: "malformed authorization header",
			setup: func(req *http.Request) {
				req.Header.Set("Authorization", "Token abc")
			},
		},
		{
			name: "garbage token",
			setup: func(req *http.Request) {
				req.Header.Set("Authorization", "Bearer not.a.jwt")
			},
		},
		{
			name: "token signed with a different secret",
			setup: func(req *http.Request) {
				other := cfg
				other.Secret = "other-secret"
				token, _ := IssueToken(other, uuid.New())
				req.Header.Set("Authorization", "Bearer "+token)
			},
		},
		{
			name: "expired token",
			setup: func(req *http.Request) {
				expired := cfg
				expired.Expiration = -time.Hour
				token, _ := IssueToken(expired, uuid.New())
				req.Header.Set("Authorization", "Bearer "+token)
			},
		},
		{
			name: "non-uuid tenant header",
			setup: func(req *http.Request) {
				req.Header.Set("X-Tenant-ID", "not-a-uuid")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAuthRouter(cfg)
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"success":false`)
		})
	}
}

func TestTenantAuth_BearerWinsOverHeader(t *testing.T) {
	cfg := testJWTConfig()
	router := newAuthRouter(cfg)
	tokenTenant := uuid.New()
	headerTenant := uuid.New()

	token, err := IssueToken(cfg, tokenTenant)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Tenant-ID", headerTenant.String())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), tokenTenant.String())
}
