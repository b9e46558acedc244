package middleware

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/edgarhovh/auth-service/internal/apperr"
	"github.com/edgarhovh/auth-service/internal/config"
)

// slidingWindowScript counts requests in the trailing window using a
// sorted set of timestamps.  Returns {allowed, retry_after_ms}.  Members
// carry a random suffix so two hits in the same millisecond both count.
var slidingWindowScript = redis.NewScript(`
    local key = KEYS[1]
    local now_ms = tonumber(ARGV[1])
    local window_ms = tonumber(ARGV[2])
    local max = tonumber(ARGV[3])
    local member = ARGV[4]

    redis.call('ZREMRANGEBYSCORE', key, 0, now_ms - window_ms)
    local count = redis.call('ZCARD', key)
    if count >= max then
        local ttl = redis.call('PTTL', key)
        if ttl < 0 then ttl = window_ms end
        return { 0, ttl }
    end
    redis.call('ZADD', key, now_ms, member)
    redis.call('PEXPIRE', key, window_ms)
    return { 1, 0 }
`)

// RateLimit enforces one sliding-window rule keyed by client IP.  The
// limiter fails open: with no redis client, or on any script error, the
// request proceeds.  Availability of login beats strictness here; the
// credential checks behind the limiter still hold.
func RateLimit(rule config.RateLimitRule, rdb *redis.Client) echo.MiddlewareFunc {
	if rdb == nil || rule.Max <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}
			key := "ratelimit:" + rule.Prefix + ":" + ip
			now := time.Now()
			member := fmt.Sprintf("%d-%s", now.UnixMilli(), uuid.NewString())

			vals, err := slidingWindowScript.Run(c.Request().Context(), rdb, []string{key},
				now.UnixMilli(), int64(rule.WindowSeconds)*1000, rule.Max, member).Int64Slice()
			if err != nil || len(vals) != 2 {
				log.Printf("ratelimit: script failed for %s: %v", key, err)
				return next(c)
			}

			if vals[0] == 0 {
				retryAfter := int((vals[1] + 999) / 1000)
				if retryAfter < 1 {
					retryAfter = 1
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
				return apperr.RateLimited(retryAfter)
			}
			return next(c)
		}
	}
}
