package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mcprouter/internal/infrastructure/ratelimit"
	"mcprouter/internal/shared/logger"
	"mcprouter/internal/shared/utils"
)

// RateLimit applies a per-client-IP limit to the wrapped routes. A
// limiter failure fails open: an unavailable Redis must not take the
// auth endpoints down with it.
func RateLimit(limiter ratelimit.RateLimiter, config ratelimit.RateLimitConfig, name string, log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := name + ":" + c.ClientIP()

		allowed, err := limiter.Allow(c.Request.Context(), key, config)
		if err != nil {
			log.Warnw("rate limiter unavailable", "name", name, "error", err)
			c.Next()
			return
		}

		if !allowed {
			utils.ErrorResponse(c, http.StatusTooManyRequests, "too many requests, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
