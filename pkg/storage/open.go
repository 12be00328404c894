package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Driver identifiers accepted by Open. DriverPgx is registered by the pgx
// stdlib adapter, DriverSQLite by mattn/go-sqlite3.
const (
	DriverSQLite   = "sqlite3"
	DriverPgx      = "pgx"
	DriverPostgres = "postgres"
)

var (
	// ErrDriverUnknown reports a driver identifier Open cannot map to a
	// registered database/sql driver.
	ErrDriverUnknown = errors.New("storage: unknown driver")
	// ErrDSNRequired reports a missing connection string.
	ErrDSNRequired = errors.New("storage: dsn is required")
)

// Open establishes a database handle for the configured driver. Callers own
// the returned handle and are responsible for closing it.
func Open(cfg Config) (*sql.DB, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, ErrDSNRequired
	}

	driver, err := normalizeDriver(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", driver, err)
	}
	return db, nil
}

// NewBunDB wraps the SQL handle with the bun dialect matching the driver.
func NewBunDB(sqlDB *sql.DB, driver string) (*bun.DB, error) {
	normalized, err := normalizeDriver(driver)
	if err != nil {
		return nil, err
	}

	switch normalized {
	case DriverSQLite:
		return bun.NewDB(sqlDB, sqlitedialect.New()), nil
	case DriverPgx:
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrDriverUnknown, driver)
	}
}

func normalizeDriver(driver string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverSQLite, "sqlite":
		return DriverSQLite, nil
	case DriverPgx, DriverPostgres, "postgresql":
		return DriverPgx, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrDriverUnknown, driver)
	}
}
