package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func baseEnv() map[string]string {
	return map[string]string{
		"APP_ENV":                "test",
		"APP_PORT":               "8080",
		"DB_USER":                "swim",
		"DB_HOST":                "localhost",
		"DB_PORT":                "3306",
		"DB_NAME":                "swimclub",
		"JWT_SECRET":             "secret",
		"ACCESS_TOKEN_TTL_MIN":   "15",
		"REFRESH_TOKEN_TTL_DAYS": "7",
		"BCRYPT_COST":            "4",
	}
}

func TestParse(t *testing.T) {
	env := baseEnv()
	env["APP_TIMEZONE"] = "Europe/Belgrade"
	env["DB_AUTO_MIGRATE"] = "off"

	cfg, err := Parse(lookupFrom(env))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreMySQL, cfg.StoreDriver)
	assert.Equal(t, 15, cfg.AccessTTLMin)
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.AutoMigrate)
	assert.Equal(t, "Europe/Belgrade", cfg.Location.String())
}

func TestParseReportsEveryProblem(t *testing.T) {
	env := baseEnv()
	delete(env, "JWT_SECRET")
	delete(env, "DB_HOST")
	env["BCRYPT_COST"] = "ten"

	_, err := Parse(lookupFrom(env))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "DB_HOST")
	assert.Contains(t, err.Error(), `invalid int for BCRYPT_COST: "ten"`)
}

func TestParseMemoryStoreSkipsDatabaseVars(t *testing.T) {
	env := baseEnv()
	env["STORE_DRIVER"] = StoreMemory
	for _, k := range []string{"DB_USER", "DB_HOST", "DB_PORT", "DB_NAME"} {
		delete(env, k)
	}

	cfg, err := Parse(lookupFrom(env))
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)

	env["STORE_DRIVER"] = "sqlite"
	_, err = Parse(lookupFrom(env))
	assert.ErrorContains(t, err, "invalid STORE_DRIVER")
}

func TestParseRejectsUnknownTimezone(t *testing.T) {
	env := baseEnv()
	env["APP_TIMEZONE"] = "Mars/Olympus"
	_, err := Parse(lookupFrom(env))
	assert.ErrorContains(t, err, "APP_TIMEZONE")
}

func TestLoadRateLimitConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, 2*time.Second, cfg.RefillInterval)
	assert.Equal(t, 10*time.Second, cfg.TTL)
	assert.Equal(t, "swim:rl", cfg.Prefix)
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head ,")
	t.Setenv("CACHE_ENABLED", "no")

	cfg := LoadCacheConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, cfg.Methods)
	assert.Equal(t, 30*time.Second, cfg.TTL)
}

func TestLoadRedisConfigPrefersHostPort(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_DB", "2")

	cfg := LoadRedisConfig()
	assert.Equal(t, "redis:6380", cfg.Addr)
	assert.Equal(t, 2, cfg.DB)
	assert.False(t, cfg.TLS)
}

func TestLoadQueueConfigFallsBackToAMQPURL(t *testing.T) {
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("AMQP_URL", "amqp://u:p@mq:5672/")

	cfg := LoadQueueConfig()
	assert.Equal(t, "amqp://u:p@mq:5672/", cfg.URL)
	assert.Equal(t, "club.events", cfg.Queue)
	assert.False(t, cfg.ConsumerEnabled)
}
