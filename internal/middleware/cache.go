package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/swim-club-backend/internal/config"
)

// cachedResponse is what the cache stores per key.
type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// captureWriter tees the response body into buf, up to limit bytes.
type captureWriter struct {
	http.ResponseWriter
	status    int
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if !cw.truncated {
		if cw.limit > 0 && cw.buf.Len()+len(b) > cw.limit {
			cw.truncated = true
		} else {
			cw.buf.Write(b)
		}
	}
	return cw.ResponseWriter.Write(b)
}

// cacheKey hashes the parts chosen by cfg.KeyStrategy under cfg.Prefix.
func cacheKey(cfg config.CacheConfig, c echo.Context) string {
	r := c.Request()
	var parts []string
	switch strings.ToLower(cfg.KeyStrategy) {
	case "route":
		parts = []string{"route", c.Path()}
	case "method_route":
		parts = []string{"method", r.Method, "route", c.Path()}
	case "method_route_query":
		parts = []string{"method", r.Method, "route", c.Path(), "q", r.URL.RawQuery}
	default:
		parts = []string{"route", c.Path(), "q", r.URL.RawQuery}
	}
	sum := sha1.Sum([]byte(strings.Join(parts, ":")))
	return fmt.Sprintf("%s:%x", cfg.Prefix, sum)
}

// NewRedisCache serves repeated reads of public, caller-independent
// resources from Redis. Only 200 responses no larger than MaxBodyBytes are
// stored. A nil client disables it.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[c.Request().Method] {
				return next(c)
			}
			ctx := c.Request().Context()
			key := cacheKey(cfg, c)

			if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
				var hit cachedResponse
				if json.Unmarshal(raw, &hit) == nil {
					c.Response().Header().Set("X-Cache", "HIT")
					return c.Blob(hit.Status, hit.ContentType, hit.Body)
				}
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}
			if cw.status != http.StatusOK || cw.truncated {
				return nil
			}
			payload, err := json.Marshal(cachedResponse{
				Status:      cw.status,
				ContentType: c.Response().Header().Get(echo.HeaderContentType),
				Body:        cw.buf.Bytes(),
			})
			if err != nil {
				return nil
			}
			if err := rdb.Set(context.WithoutCancel(ctx), key, payload, cfg.TTL).Err(); err != nil {
				c.Logger().Warnf("cache: store %s: %v", key, err)
			}
			return nil
		}
	}
}

// InvalidateCache drops every entry under cfg.Prefix. Writers of cached
// resources call it after a successful change.
func InvalidateCache(ctx context.Context, cfg config.CacheConfig, rdb *redis.Client) error {
	if !cfg.Enabled || rdb == nil {
		return nil
	}
	iter := rdb.Scan(ctx, 0, cfg.Prefix+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return rdb.Del(ctx, keys...).Err()
}
