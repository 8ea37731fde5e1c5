package database

import (
	"context"
	"fmt"

	"wiki-quiz/internal/config"
	"wiki-quiz/internal/logger"

	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver ("pgx")
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	_ "github.com/sijms/go-ora/v2"  // Oracle driver
	"go.uber.org/zap"
)

func init() {
	// go-ora binds :name placeholders in order.
	sqlx.BindDriver("oracle", sqlx.NAMED)
}

// DriverName maps the configured db.driver onto the registered database/sql driver.
func DriverName(driver string) (string, error) {
	switch driver {
	case "postgres":
		return "pgx", nil
	case "sqlite3":
		return "sqlite3", nil
	case "oracle":
		return "oracle", nil
	default:
		return "", fmt.Errorf("unsupported db driver: %q", driver)
	}
}

// Open connects and pings the configured database.
func Open(ctx context.Context, cfg config.DBConfig) (*sqlx.DB, error) {
	driverName, err := DriverName(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.Driver == "sqlite3" {
		// One writer at a time avoids SQLITE_BUSY under concurrent inserts.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", cfg.Driver, err)
	}

	logger.Get().Info("Successfully connected to database", zap.String("driver", cfg.Driver))
	return db, nil
}
