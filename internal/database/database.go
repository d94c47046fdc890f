package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// PoolOptions configures the underlying sql.DB connection pool, grounded on
// sqlite_onlinestore.rs's ConnectionOptions defaults.
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultPoolOptions mirrors ConnectionOptions::default() (max_connections:
// 5, min_connections: 1, idle_timeout: 600s).
func DefaultPoolOptions() PoolOptions {
	return PoolOptions{
		MaxOpenConns:    5,
		MaxIdleConns:    1,
		ConnMaxLifetime: 10 * time.Minute,
	}
}

// NewConnection opens a GORM connection for the given driver ("sqlite" or
// "postgres") and DSN, applying pool options.
func NewConnection(driver, dsn string, pool PoolOptions) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("opening database connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)

	return db, nil
}
