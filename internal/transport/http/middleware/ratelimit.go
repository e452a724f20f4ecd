package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"aichat-backend/internal/cache"
	"aichat-backend/internal/pkg/logger"
	"aichat-backend/internal/transport/http/response"
)

// AuthRateLimit limits register and login attempts per client IP.
func AuthRateLimit(limiter *cache.RateLimiter, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := limiter.AllowAuth(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.FromContext(c.Request.Context(), log).Error("rate limit check failed", zap.Error(err))
			response.AbortError(c, http.StatusInternalServerError, response.MsgServerError)
			return
		}

		setRateLimitHeaders(c, result)
		if !result.Allowed {
			response.AbortError(c, http.StatusTooManyRequests, response.MsgTooMany)
			return
		}
		c.Next()
	}
}

func setRateLimitHeaders(c *gin.Context, result *cache.RateLimitResult) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(int64(result.ResetIn.Seconds()), 10))
}
