package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stocksync/backend/internal/infrastructure/config"
	"github.com/stocksync/backend/internal/interfaces/http/dto"
)

// Tenant context keys
const (
	TenantIDKey     = "tenant_id"
	TenantHeaderKey = "X-Tenant-ID"
	AuthHeaderKey   = "Authorization"
	BearerPrefix    = "Bearer "
)

// TenantClaims is the JWT claim set carried by API tokens. Only the tenant
// identity matters to this service; there is no user model.
type TenantClaims struct {
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

// TenantAuth authenticates a request and resolves its tenant. A Bearer token
// is preferred; the X-Tenant-ID header is accepted as a fallback when no
// Authorization header is present. Requests resolving to no valid tenant are
// rejected with 401.
func TenantAuth(cfg config.JWTConfig, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)

		if authHeader != "" {
			if !strings.HasPrefix(authHeader, BearerPrefix) {
				abortUnauthorized(c, "Invalid authorization header format")
				return
			}
			tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
			claims, err := parseToken(cfg, tokenString)
			if err != nil {
				logger.Warn("token validation failed",
					zap.String("path", c.Request.URL.Path),
					zap.Error(err),
				)
				abortUnauthorized(c, "Invalid or expired token")
				return
			}
			if _, err := uuid.Parse(claims.TenantID); err != nil {
				abortUnauthorized(c, "Token carries no valid tenant")
				return
			}
			c.Set(TenantIDKey, claims.TenantID)
			c.Next()
			return
		}

		if headerTenant := c.GetHeader(TenantHeaderKey); headerTenant != "" {
			if _, err := uuid.Parse(headerTenant); err != nil {
				abortUnauthorized(c, "Invalid tenant ID format")
				return
			}
			c.Set(TenantIDKey, headerTenant)
			c.Next()
			return
		}

		abortUnauthorized(c, "Tenant identification required")
	}
}

func parseToken(cfg config.JWTConfig, tokenString string) (*TenantClaims, error) {
	claims := &TenantClaims{}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(cfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("middleware: token is not valid")
	}
	return claims, nil
}

// IssueToken mints a tenant-scoped API token. Used by operator tooling and
// tests; there is no self-service auth endpoint.
func IssueToken(cfg config.JWTConfig, tenantID uuid.UUID) (string, error) {
	now := time.Now()
	claims := TenantClaims{
		TenantID: tenantID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.Expiration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Secret))
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponse("UNAUTHORIZED", message))
}

// GetTenantID retrieves the tenant ID from gin.Context
func GetTenantID(c *gin.Context) string {
	if tenantID, exists := c.Get(TenantIDKey); exists {
		if tid, ok := tenantID.(string); ok {
			return tid
		}
	}
	return ""
}

// GetTenantUUID retrieves the tenant ID as a UUID from gin.Context
func GetTenantUUID(c *gin.Context) (uuid.UUID, error) {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return uuid.Nil, errors.New("middleware: tenant not resolved")
	}
	return uuid.Parse(tenantID)
}
