package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/fahad04code/Bakbak-bot/internal/platform/ctxutil"
	"github.com/fahad04code/Bakbak-bot/internal/platform/logger"
)

const rateLimitKeyPrefix = "bakbak:prompt_rate:"

// RateLimitMiddleware throttles prompt generation per phone over a fixed
// window. With no redis client or a non-positive limit it passes everything
// through, and redis outages fail open so prompts keep flowing.
type RateLimitMiddleware struct {
	log    *logger.Logger
	rdb    *redis.Client
	limit  int
	window time.Duration
}

func NewRateLimitMiddleware(log *logger.Logger, rdb *redis.Client, limit int, window time.Duration) *RateLimitMiddleware {
	middlewareLogger := log.With("middleware", "RateLimitMiddleware")
	if rdb == nil || limit <= 0 {
		middlewareLogger.Info("Prompt rate limiting disabled")
	} else {
		middlewareLogger.Info("Prompt rate limiting enabled", "limit", limit, "window", window.String())
	}
	return &RateLimitMiddleware{log: middlewareLogger, rdb: rdb, limit: limit, window: window}
}

func (rl *RateLimitMiddleware) LimitPromptRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.rdb == nil || rl.limit <= 0 {
			c.Next()
			return
		}
		sd := ctxutil.GetSessionData(c.Request.Context())
		if sd == nil || sd.Phone == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := rateLimitKeyPrefix + sd.Phone
		count, err := rl.rdb.Incr(ctx, key).Result()
		if err != nil {
			rl.log.Warn("Rate limit check failed; allowing request", "error", err)
			c.Next()
			return
		}
		if count == 1 {
			if err := rl.rdb.Expire(ctx, key, rl.window).Err(); err != nil {
				rl.log.Warn("Could not set rate limit window", "error", err)
			}
		}
		if count > int64(rl.limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{"message": "too many prompt requests, slow down", "code": "rate_limited"},
			})
			return
		}
		c.Next()
	}
}
