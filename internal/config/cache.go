package config

import (
	"strings"
	"time"
)

// CacheConfig drives the Redis response cache. Only routes that opt in use
// it; today that is the skills catalog, which is identical for every caller.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	KeyStrategy  string // route, method_route, route_query, method_route_query
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads CACHE_* variables. Methods are upper-cased.
func LoadCacheConfig() CacheConfig {
	cfg := CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Methods:      parseMethods(envStr("CACHE_METHODS", "GET")),
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		KeyStrategy:  envStr("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       envStr("CACHE_PREFIX", "swim:cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	return cfg
}

func parseMethods(s string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}
