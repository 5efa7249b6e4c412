package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/notes-keeper/internal/config"
)

// NewRateLimiter returns a fixed-window limiter for the auth endpoints,
// keyed by client IP. One Redis counter per key and window: INCR plus an
// EXPIRE set when the counter is created. Crossing the limit yields 429
// with a Retry-After header. When the limiter is disabled or Redis is
// unavailable the middleware passes requests through untouched — login
// must keep working without the cache tier.
func NewRateLimiter(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	windowSec := int64(cfg.Window / time.Second)
	if windowSec < 1 {
		windowSec = 1
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			key := cfg.Prefix + ":" + c.RealIP() + ":" + strconv.FormatInt(time.Now().Unix()/windowSec, 10)

			count, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				// Redis down mid-flight: fail open.
				return next(c)
			}
			if count == 1 {
				_ = rdb.Expire(ctx, key, cfg.Window).Err()
			}
			if count > int64(cfg.Limit) {
				c.Response().Header().Set("Retry-After", strconv.FormatInt(windowSec, 10))
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "too many requests"})
			}
			return next(c)
		}
	}
}
