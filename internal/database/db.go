package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/swim-club-backend/internal/config"
)

// DSN builds the driver connection string for cfg.
func DSN(cfg config.Config) string {
	mc := mysql.NewConfig()
	mc.User = cfg.DBUser
	mc.Passwd = cfg.DBPass
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%s", cfg.DBHost, cfg.DBPort)
	mc.DBName = cfg.DBName
	// parseTime=true -> DATE/DATETIME -> time.Time | loc=UTC keeps times consistent
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Params = map[string]string{"charset": "utf8mb4"}
	// goose migration files hold several statements each
	mc.MultiStatements = true
	return mc.FormatDSN()
}

// Open connects to MySQL and verifies the connection.
func Open(cfg config.Config) (*sql.DB, error) {
	db, err := sql.Open("mysql", DSN(cfg))
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return db, nil
}
