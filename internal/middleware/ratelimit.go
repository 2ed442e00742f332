package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/swim-club-backend/internal/config"
)

// tokenBucket refills whole intervals only, so a burst right after a refill
// never exceeds capacity. Returns {allowed, remaining, retry_after_ms}.
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill_tokens = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl_seconds = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])
if tokens == nil or last_refill == nil then
	tokens = capacity
	last_refill = now_ms
end

local elapsed = math.max(0, now_ms - last_refill)
local intervals = math.floor(elapsed / interval_ms)
if intervals > 0 then
	tokens = math.min(capacity, tokens + intervals * refill_tokens)
	last_refill = last_refill + intervals * interval_ms
end

local allowed = 0
local retry_ms = 0
if tokens > 0 then
	allowed = 1
	tokens = tokens - 1
else
	retry_ms = math.max(0, interval_ms - (now_ms - last_refill))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)
return { allowed, tokens, retry_ms }
`)

// bucketState is one decoded script reply.
type bucketState struct {
	allowed   bool
	remaining int64
	retry     time.Duration
}

func parseBucketReply(v any) (bucketState, error) {
	arr, ok := v.([]any)
	if !ok || len(arr) != 3 {
		return bucketState{}, fmt.Errorf("unexpected token bucket reply %#v", v)
	}
	return bucketState{
		allowed:   asInt64(arr[0]) == 1,
		remaining: asInt64(arr[1]),
		retry:     time.Duration(asInt64(arr[2])) * time.Millisecond,
	}, nil
}

// NewTokenBucket limits requests with a Redis token bucket keyed by
// cfg.KeyStrategy. A nil client or a Redis failure lets requests through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	capacity := strconv.Itoa(cfg.Capacity)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rateKey(cfg, c)
			reply, err := tokenBucket.Run(c.Request().Context(), rdb, []string{key},
				time.Now().UnixMilli(),
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				int64(cfg.TTL/time.Second),
			).Result()
			if err != nil {
				c.Logger().Warnf("ratelimit: redis error for %s: %v", key, err)
				return next(c)
			}
			st, err := parseBucketReply(reply)
			if err != nil {
				c.Logger().Warnf("ratelimit: %v", err)
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", capacity)
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(st.remaining, 10))
			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}
			if st.allowed {
				return next(c)
			}
			secs := int(math.Ceil(st.retry.Seconds()))
			h.Set("Retry-After", strconv.Itoa(secs))
			if cfg.Debug {
				c.Logger().Infof("ratelimit: blocked %s, retry in %s", key, st.retry)
			}
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error":       "rate limit exceeded",
				"retry_after": secs,
			})
		}
	}
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

func asInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		n, _ := strconv.ParseInt(t, 10, 64)
		return n
	}
	return 0
}

// rateKey joins the parts selected by cfg.KeyStrategy: any combination of
// ip, user and route, defaulting to all three.
func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	route := c.Request().Method + " " + c.Path()

	parts := []string{cfg.Prefix}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		parts = append(parts, "ip", ip)
	case "user":
		parts = append(parts, "user", principal(c))
	case "route":
		parts = append(parts, "route", route)
	case "ip_user":
		parts = append(parts, "ip", ip, "user", principal(c))
	case "ip_route":
		parts = append(parts, "ip", ip, "route", route)
	case "user_route":
		parts = append(parts, "user", principal(c), "route", route)
	default:
		parts = append(parts, "ip", ip, "user", principal(c), "route", route)
	}
	return strings.Join(parts, ":")
}
