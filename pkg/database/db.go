// Package database owns the shared *gorm.DB.
package database

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"

	"github.com/diamantrouge/maison/config"
)

var DB *gorm.DB

var errNotConnected = errors.New("database: not connected")

var dialects = map[string]func(dsn string) gorm.Dialector{
	"sqlite":    func(dsn string) gorm.Dialector { return sqlite.Open(sqliteDSN(dsn)) },
	"postgres":  postgres.Open,
	"mysql":     mysql.Open,
	"sqlserver": sqlserver.Open,
}

// Connect opens DB_DRIVER at DATABASE_DSN, sizes the pool from config and
// pings before publishing the handle.
func Connect() error {
	db, err := Open(config.DatabaseDriver(), config.DatabaseDSN())
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("database: pool: %w", err)
	}
	maxOpen, maxIdle, lifetime := config.DBPool()
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(lifetime)
	sqlDB.SetConnMaxIdleTime(lifetime / 2)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return fmt.Errorf("database: ping %s: %w", config.DatabaseDriver(), err)
	}
	DB = db
	return nil
}

// Open builds a handle for driver without touching DB.
func Open(driver, dsn string) (*gorm.DB, error) {
	open, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("database: unsupported DB_DRIVER %q (supported: %s)",
			driver, strings.Join(slices.Sorted(maps.Keys(dialects)), ", "))
	}
	return OpenDialector(open(dsn))
}

// OpenDialector opens any dialector, sqlmock's included, with the slog
// query logger and the query-duration callbacks installed.
func OpenDialector(d gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(d, &gorm.Config{
		Logger:                 newGormLogger(200 * time.Millisecond),
		SkipDefaultTransaction: true,
		TranslateError:         true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}
	if err := registerMetrics(db); err != nil {
		return nil, fmt.Errorf("database: callbacks: %w", err)
	}
	return db, nil
}

// Use swaps the shared handle; tests install an in-memory sqlite.
func Use(db *gorm.DB) { DB = db }

func Ping(ctx context.Context) error {
	if DB == nil {
		return errNotConnected
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// sqliteDSN turns foreign keys on, which sqlite leaves off per connection.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") || strings.Contains(dsn, "_fk") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on"
	}
	return dsn + "?_foreign_keys=on"
}
