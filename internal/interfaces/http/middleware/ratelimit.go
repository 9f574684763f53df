package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stocksync/backend/internal/infrastructure/config"
	"github.com/stocksync/backend/internal/infrastructure/ratelimit"
	"github.com/stocksync/backend/internal/interfaces/http/dto"
)

// RateLimit returns a middleware enforcing one endpoint-class preset. The
// counter key is the tenant when resolved, otherwise the client IP, so
// unauthenticated endpoints (webhooks) are limited per source address.
func RateLimit(limiter *ratelimit.Limiter, preset config.RateLimitPreset, class string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := GetTenantID(c)
		if key == "" {
			key = c.ClientIP()
		}
		key = key + ":" + class

		decision, err := limiter.Check(c.Request.Context(), key, preset.Limit, preset.Window)
		if err != nil {
			// A broken limiter store must not take the API down
			logger.Warn("rate limit check failed, allowing request",
				zap.String("class", class),
				zap.Error(err),
			)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

		if !decision.Allowed {
			c.Header("Retry-After", strconv.FormatInt(decision.RetryAfterSeconds(), 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.NewErrorResponse("RATE_LIMIT_EXCEEDED", "Too many requests. Please try again later."))
			return
		}

		c.Next()
	}
}
