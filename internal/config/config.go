// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Record store drivers accepted in STORE_DRIVER.
const (
	StoreMySQL  = "mysql"
	StoreMemory = "memory"
)

// Config holds the runtime configuration of the API server. Each field maps to
// one environment variable; see Parse for the names.
type Config struct {
	Env            string         // application environment (dev, test, prod)
	Port           string         // HTTP port to listen on
	StoreDriver    string         // mysql or memory
	DBUser         string         // database username
	DBPass         string         // database password (optional)
	DBHost         string         // database host address
	DBPort         string         // database port number
	DBName         string         // database name
	JWTSecret      string         // secret used to sign access tokens
	AccessTTLMin   int            // access token lifetime in minutes
	RefreshTTLDays int            // refresh token lifetime in days
	BcryptCost     int            // bcrypt cost for password hashing
	LogLevel       string         // debug, info, warn, error
	AutoMigrate    bool           // run embedded migrations on startup
	Location       *time.Location // club timezone used to decide what "today" is
}

// Load reads a .env file when one is present, then parses the process
// environment. Missing or malformed required variables stop the process.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: ignoring .env: %v", err)
	}
	cfg, err := Parse(os.LookupEnv)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

// Parse builds a Config from the given lookup function. All problems are
// reported together.
func Parse(lookup func(string) (string, bool)) (Config, error) {
	r := reader{lookup: lookup}
	driver := r.opt("STORE_DRIVER", StoreMySQL)
	db := r.must
	switch driver {
	case StoreMySQL:
	case StoreMemory:
		db = func(key string) string { return r.opt(key, "") }
	default:
		r.fail(fmt.Errorf("invalid STORE_DRIVER %q: want %s or %s", driver, StoreMySQL, StoreMemory))
	}
	cfg := Config{
		Env:            r.must("APP_ENV"),
		Port:           r.must("APP_PORT"),
		StoreDriver:    driver,
		DBUser:         db("DB_USER"),
		DBPass:         r.opt("DB_PASS", ""),
		DBHost:         db("DB_HOST"),
		DBPort:         db("DB_PORT"),
		DBName:         db("DB_NAME"),
		JWTSecret:      r.must("JWT_SECRET"),
		AccessTTLMin:   r.mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: r.mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     r.mustInt("BCRYPT_COST"),
		LogLevel:       r.opt("LOG_LEVEL", "info"),
		AutoMigrate:    parseBool(r.opt("DB_AUTO_MIGRATE", "true"), true),
	}
	tz := r.opt("APP_TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		r.fail(fmt.Errorf("invalid APP_TIMEZONE %q: %w", tz, err))
	}
	cfg.Location = loc
	if r.err != nil {
		return Config{}, r.err
	}
	return cfg, nil
}

// reader collects errors while pulling values so that every missing
// variable shows up in one message.
type reader struct {
	lookup func(string) (string, bool)
	err    error
}

func (r *reader) fail(err error) { r.err = errors.Join(r.err, err) }

func (r *reader) opt(key, def string) string {
	if v, ok := r.lookup(key); ok && v != "" {
		return v
	}
	return def
}

func (r *reader) must(key string) string {
	v, ok := r.lookup(key)
	if !ok || v == "" {
		r.fail(fmt.Errorf("missing required env var: %s", key))
	}
	return v
}

func (r *reader) mustInt(key string) int {
	s := r.must(key)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		r.fail(fmt.Errorf("invalid int for %s: %q", key, s))
	}
	return n
}
