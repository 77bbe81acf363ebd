package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/farellandr/museum-tickets/internal/helpers"
	"github.com/farellandr/museum-tickets/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Window   time.Duration
	Prefix   string
}

// RateLimit is a fixed window limiter keyed by client ip and route. It passes
// every request through when disabled or without redis, and fails open when
// redis errors.
func RateLimit(cfg RateLimitConfig, rdb *redis.Client) gin.HandlerFunc {
	if !cfg.Enabled || rdb == nil || cfg.Requests <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "ratelimit"
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := fmt.Sprintf("%s:%s:%s", cfg.Prefix, c.FullPath(), c.ClientIP())

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			logging.FromContext(ctx).WithError(err).Warn("Rate limiter unavailable")
			c.Next()
			return
		}
		if count == 1 {
			if err := rdb.Expire(ctx, key, cfg.Window).Err(); err != nil {
				logging.FromContext(ctx).WithError(err).Warn("Could not set rate limit window")
			}
		}

		remaining := int64(cfg.Requests) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Requests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(cfg.Requests) {
			c.Header("Retry-After", strconv.Itoa(int(cfg.Window.Seconds())))
			helpers.AbortWithError(c, http.StatusTooManyRequests, "Too many requests, please try again later.")
			return
		}
		c.Next()
	}
}
